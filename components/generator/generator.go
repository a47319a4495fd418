package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/bububa/uxcrew/components"
)

var (
	// ErrImageUnsupported is returned by providers which can not take image input
	ErrImageUnsupported = errors.New("provider does not support image input")
	// ErrEmptyResponse is returned when the provider answered without any text
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrNoMessages is returned for a request without user message
	ErrNoMessages = errors.New("request has no user message")
)

// Generator turns an ordered list of messages into the text of the next assistant message
type Generator interface {
	Provider() Provider
	Generate(ctx context.Context, req *Request, resp *components.LLMResponse) (string, error)
}

// Request is a single generation call
type Request struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// Messages in conversation order, system messages first
	Messages []components.Message
}

// Split returns the joined system messages and the rest of the conversation
func (r Request) Split() (string, []components.Message) {
	var (
		system   []string
		messages = make([]components.Message, 0, len(r.Messages))
	)
	for _, msg := range r.Messages {
		if msg.Role() == components.SystemRole {
			if txt := msg.Text(); txt != "" {
				system = append(system, txt)
			}
			continue
		}
		messages = append(messages, msg)
	}
	return strings.Join(system, "\n\n"), messages
}

// HasImages reports whether any message carries an image
func (r Request) HasImages() bool {
	for _, msg := range r.Messages {
		if msg.Attachement().HasImages() {
			return true
		}
	}
	return false
}

// Func adapts a function to the Generator interface
type Func func(ctx context.Context, req *Request, resp *components.LLMResponse) (string, error)

func (f Func) Provider() Provider {
	return "func"
}

func (f Func) Generate(ctx context.Context, req *Request, resp *components.LLMResponse) (string, error) {
	return f(ctx, req, resp)
}
