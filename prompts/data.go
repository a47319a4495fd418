package prompts

import "fmt"

// Data is passed to every stage template
type Data struct {
	// Goals are the redesign goals of the request
	Goals []string
	// Notes is free text from the requester
	Notes string
	Image ImageInfo
}

// ImageInfo describes the uploaded image without its content
type ImageInfo struct {
	Present bool
	Format  string
	Width   int
	Height  int
}

func (i ImageInfo) String() string {
	if !i.Present {
		return "no image"
	}
	if i.Width > 0 && i.Height > 0 {
		return fmt.Sprintf("%s, %dx%d pixels", i.Format, i.Width, i.Height)
	}
	return i.Format
}
