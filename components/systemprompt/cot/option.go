package cot

import (
	"fmt"
	"strings"

	"github.com/bububa/uxcrew/components/systemprompt"
)

type Option = func(g *Generator)

// WithPersona fills the identity section from the role, goal and backstory of an agent, empty parts are skipped
func WithPersona(role string, goal string, backstory string) Option {
	return func(g *Generator) {
		if role != "" {
			g.background = append(g.background, fmt.Sprintf("- You are the %s.", sentence(role)))
		}
		if goal != "" {
			g.background = append(g.background, fmt.Sprintf("- Your goal: %s.", sentence(goal)))
		}
		if backstory != "" {
			g.background = append(g.background, fmt.Sprintf("- %s.", sentence(backstory)))
		}
	}
}

// WithBackground appends lines to the identity section
func WithBackground(lines ...string) Option {
	return func(g *Generator) {
		g.background = append(g.background, lines...)
	}
}

// WithSteps appends internal steps
func WithSteps(steps ...string) Option {
	return func(g *Generator) {
		g.steps = append(g.steps, steps...)
	}
}

// WithExpectedOutput describes the answer, it is the first output instruction
func WithExpectedOutput(expected string) Option {
	return func(g *Generator) {
		if expected == "" {
			return
		}
		g.outputInstructs = append([]string{fmt.Sprintf("- Expected output: %s.", sentence(expected))}, g.outputInstructs...)
	}
}

// WithOutputInstructs appends output instructions
func WithOutputInstructs(instructs ...string) Option {
	return func(g *Generator) {
		g.outputInstructs = append(g.outputInstructs, instructs...)
	}
}

// WithContextProviders set Generator context providers
func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}

func sentence(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".")
}
