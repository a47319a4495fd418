package schema

import (
	"encoding/base64"
	"fmt"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Image is an inline image payload
type Image struct {
	// Data is the encoded image
	Data []byte `json:"-"`
	// Format is the image subtype, png or jpeg
	Format string `json:"format"`
	// Width in pixels
	Width int `json:"width,omitempty"`
	// Height in pixels
	Height int `json:"height,omitempty"`
}

// MimeType returns the image media type, e.g. image/png
func (i Image) MimeType() string {
	return "image/" + i.Format
}

// Base64 returns the standard base64 encoding of the image data
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType(), i.Base64())
}

// String describes the image, it never includes the payload
func (i Image) String() string {
	if i.Width > 0 && i.Height > 0 {
		return fmt.Sprintf("%dx%d pixels, format: %s", i.Width, i.Height, i.Format)
	}
	return fmt.Sprintf("format: %s", i.Format)
}
