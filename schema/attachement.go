package schema

// Attachement message attachement
type Attachement struct {
	// Images attached inline images
	Images []Image `json:"images,omitempty"`
}

// HasImages reports whether the attachement carries at least one image
func (a *Attachement) HasImages() bool {
	return a != nil && len(a.Images) > 0
}
