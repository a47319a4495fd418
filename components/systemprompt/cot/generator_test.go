package cot

import (
	"testing"

	"github.com/bububa/uxcrew/components/systemprompt"
)

func TestGenerate(t *testing.T) {
	g := New(
		WithPersona("UX critic", "find usability issues.", ""),
		WithSteps("- Inspect the layout."),
		WithOutputInstructs("- Use markdown."),
		WithExpectedOutput("A numbered list"),
		WithContextProviders(
			systemprompt.NewList("Redesign goals", "simpler checkout", " "),
			systemprompt.NewStatic("Empty", ""),
		),
	)
	want := `# IDENTITY and PURPOSE
- You are the UX critic.
- Your goal: find usability issues.

# INTERNAL ASSISTANT STEPS
- Inspect the layout.

# OUTPUT INSTRUCTIONS
- Expected output: A numbered list.
- Use markdown.
- Always use the available additional information and context to enhance the response.

# EXTRA INFORMATION AND CONTEXT
## Redesign goals
- simpler checkout`
	if got := g.Generate(); got != want {
		t.Errorf("Generate() mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestContextProviders(t *testing.T) {
	g := New()
	g.AddContextProviders(systemprompt.NewStatic("a", "1"), systemprompt.NewStatic("b", "2"), systemprompt.NewStatic("a", "dup"))
	if l := len(g.ContextProviders()); l != 2 {
		t.Fatalf("expect 2 providers, got %d", l)
	}
	p, err := g.ContextProvider("a")
	if err != nil || p.Info() != "1" {
		t.Fatalf("unexpected provider %v, %v", p, err)
	}
	g.RemoveContextProviders("a")
	if _, err := g.ContextProvider("a"); err == nil {
		t.Error("expect provider a removed")
	}
	if _, err := g.ContextProvider("b"); err != nil {
		t.Error("expect provider b kept")
	}
}

func TestDefaultBackground(t *testing.T) {
	got := New(WithBackground()).Generate()
	want := `# IDENTITY and PURPOSE
- This is a conversation with a helpful and friendly AI assistant.

# OUTPUT INSTRUCTIONS
- Always use the available additional information and context to enhance the response.`
	if got != want {
		t.Errorf("Generate() mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}
