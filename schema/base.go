package schema

// Base is a base schema
type Base struct {
	attachement *Attachement `json:"-"`
}

// Attachement returns schema attachement
func (r Base) Attachement() *Attachement {
	return r.attachement
}

// SetAttachement set schema attachement
func (r *Base) SetAttachement(v *Attachement) {
	r.attachement = v
}
