package cot

import (
	"fmt"
	"strings"

	"github.com/bububa/uxcrew/components/systemprompt"
)

const (
	IdentitySection = "IDENTITY and PURPOSE"
	StepsSection    = "INTERNAL ASSISTANT STEPS"
	OutputSection   = "OUTPUT INSTRUCTIONS"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	ret.outputInstructs = append(ret.outputInstructs, "- Always use the available additional information and context to enhance the response.")
	return ret
}

func (g *Generator) Generate() string {
	var (
		sections = map[string][]string{
			IdentitySection: g.background,
			StepsSection:    g.steps,
			OutputSection:   g.outputInstructs,
		}
		promptParts []string
	)
	for _, title := range []string{IdentitySection, StepsSection, OutputSection} {
		content := sections[title]
		if len(content) > 0 {
			promptParts = append(promptParts, fmt.Sprintf("# %s", title))
			promptParts = append(promptParts, content...)
			promptParts = append(promptParts, "")
		}
	}
	promptParts = append(promptParts, g.ContextParts()...)
	return strings.TrimSpace(strings.Join(promptParts, "\n"))
}
