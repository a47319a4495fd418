package schema

import (
	"encoding/json"
	"fmt"
)

// Schema is message schema interface
type Schema interface {
	// Attachement() returns schema attchement
	Attachement() *Attachement
}

type SchemaPointer interface {
	Schema
	SetAttachement(*Attachement)
}

// Stringify returns the text sent to a model for a schema.
// Plain strings and Stringers are used as is, anything else is JSON encoded.
func Stringify(s Schema) string {
	switch v := s.(type) {
	case String:
		return string(v)
	case *String:
		return string(*v)
	case fmt.Stringer:
		return v.String()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}
