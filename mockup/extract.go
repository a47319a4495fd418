// Package mockup extracts and post-processes the HTML mockup generated by the last pipeline stage
package mockup

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoHTML is returned when a text holds no HTML document
var ErrNoHTML = errors.New("no HTML found")

var fenceRe = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[^\\n]*\\n(.*?)```")

// Extract returns the HTML document held by a model answer.
// Fenced code blocks win over the bare text, an html tagged fence over any other fence.
// Fenced or not, the document must start with a doctype or an html tag, so Extract
// returns its own output unchanged.
func Extract(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if matches := fenceRe.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		var (
			tagged   []string
			untagged []string
		)
		for _, m := range matches {
			if strings.EqualFold(m[1], "html") {
				tagged = append(tagged, m[2])
				continue
			}
			untagged = append(untagged, m[2])
		}
		for _, content := range append(tagged, untagged...) {
			if content = strings.TrimSpace(content); IsDocument(content) {
				return content, nil
			}
		}
		return "", ErrNoHTML
	}
	// an answer cut off before the closing fence
	if strings.HasPrefix(trimmed, "```") {
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			if content := strings.TrimSpace(trimmed[idx+1:]); IsDocument(content) {
				return content, nil
			}
		}
		return "", ErrNoHTML
	}
	if IsDocument(trimmed) {
		return trimmed, nil
	}
	return "", ErrNoHTML
}

// IsDocument reports whether text starts with a doctype or a root html tag, leading spaces ignored
func IsDocument(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}
