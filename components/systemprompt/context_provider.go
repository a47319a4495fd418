package systemprompt

import "strings"

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// Static is a ContextProvider with fixed content
type Static struct {
	title string
	info  string
}

// NewStatic returns a ContextProvider with fixed title and info
func NewStatic(title string, info string) *Static {
	return &Static{title: title, info: info}
}

func (s *Static) Title() string { return s.title }

func (s *Static) Info() string { return s.info }

// List renders non empty items as a markdown bullet list
type List struct {
	title string
	items []string
}

// NewList returns a ContextProvider listing items
func NewList(title string, items ...string) *List {
	return &List{title: title, items: items}
}

func (l *List) Title() string { return l.title }

func (l *List) Info() string {
	lines := make([]string, 0, len(l.items))
	for _, v := range l.items {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, "- "+v)
		}
	}
	return strings.Join(lines, "\n")
}
