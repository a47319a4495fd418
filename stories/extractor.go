package stories

import (
	"context"
	"fmt"

	"github.com/bububa/instructor-go/pkg/instructor"
	openai "github.com/sashabaranov/go-openai"
)

const extractorPrompt = `Extract every user story from the text below. Keep the wording of each story, and copy its priority (Critical, High, Medium or Low) and rationale when present.`

// Extractor turns the stories stage output into structured stories with a JSON mode call.
// Parse is used when the call fails or no client is set.
type Extractor struct {
	client *instructor.InstructorOpenAI
	model  string
}

// NewExtractor returns an Extractor, a nil client disables structured extraction
func NewExtractor(clt *openai.Client, model string) *Extractor {
	e := &Extractor{model: model}
	if clt != nil {
		e.client = instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	}
	return e
}

// Extract returns the stories of text
func (e *Extractor) Extract(ctx context.Context, text string) (List, error) {
	if e == nil || e.client == nil {
		return Parse(text), nil
	}
	ret, err := e.structured(ctx, text)
	if err == nil && len(ret.Stories) > 0 {
		return ret, nil
	}
	if fallback := Parse(text); len(fallback.Stories) > 0 {
		return fallback, nil
	}
	return List{}, err
}

func (e *Extractor) structured(ctx context.Context, text string) (List, error) {
	var ret List
	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	if _, err := e.client.CreateChatCompletion(ctx, req, &ret); err != nil {
		return ret, fmt.Errorf("extract stories: %w", err)
	}
	for i := range ret.Stories {
		ret.Stories[i].Index = i + 1
		ret.Stories[i].Priority = ParsePriority(string(ret.Stories[i].Priority))
	}
	return ret, nil
}
