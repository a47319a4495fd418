package systemprompt

import (
	"fmt"
	"strings"
)

// ContextSectionTitle is the heading under which context providers are rendered
const ContextSectionTitle = "EXTRA INFORMATION AND CONTEXT"

// Generator is system prompt generator framework
type Generator interface {
	Generate() string
	// ContextProvider retrieves a context provider by name.
	// If the context provider is not found returns not found error
	ContextProvider(title string) (ContextProvider, error)
	// AddContextProviders registers new context providers
	AddContextProviders(providers ...ContextProvider)
	// RemoveContextProviders Unregisters an existing context provider.
	RemoveContextProviders(titles ...string)
}

type BaseGenerator struct {
	contextProviders []ContextProvider
}

func (g *BaseGenerator) ContextProviders() []ContextProvider {
	return g.contextProviders
}

// ContextProvider retrieves a context provider by name.
// If the context provider is not found returns not found error
func (g *BaseGenerator) ContextProvider(title string) (ContextProvider, error) {
	for _, p := range g.contextProviders {
		if p.Title() == title {
			return p, nil
		}
	}
	return nil, fmt.Errorf("context provider '%s' not found", title)
}

// AddContextProviders registers new context providers, a title already registered is ignored
func (g *BaseGenerator) AddContextProviders(providers ...ContextProvider) {
	for _, provider := range providers {
		if _, err := g.ContextProvider(provider.Title()); err != nil {
			g.contextProviders = append(g.contextProviders, provider)
		}
	}
}

// RemoveContextProviders Unregisters an existing context provider.
func (g *BaseGenerator) RemoveContextProviders(titles ...string) {
	if len(titles) == 0 {
		return
	}
	mp := make(map[string]struct{}, len(titles))
	for _, v := range titles {
		mp[v] = struct{}{}
	}
	providers := make([]ContextProvider, 0, len(g.contextProviders))
	for _, p := range g.contextProviders {
		if _, found := mp[p.Title()]; found {
			continue
		}
		providers = append(providers, p)
	}
	g.contextProviders = providers
}

// ContextParts returns the prompt lines of the context section.
// Providers with empty info are skipped, the section is omitted when nothing is left.
func (g *BaseGenerator) ContextParts() []string {
	var parts []string
	for _, provider := range g.contextProviders {
		info := strings.TrimSpace(provider.Info())
		if info == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("## %s", provider.Title()), info, "")
	}
	if len(parts) == 0 {
		return nil
	}
	return append([]string{fmt.Sprintf("# %s", ContextSectionTitle)}, parts...)
}
