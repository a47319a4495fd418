package cohere

import (
	"context"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
)

type Generator struct {
	*cohereClient.Client

	generator.Options
}

var _ generator.Generator = (*Generator)(nil)

func (p *Generator) SetClient(clt *cohereClient.Client) {
	p.Client = clt
}

func New(client *cohereClient.Client, opts ...generator.Option) *Generator {
	i := &Generator{
		Client: client,
	}
	generator.WithProvider(generator.ProviderCohere)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

// Generate sends the last message as the chat message, the preceding ones as chat history
// and the system prompt as preamble.
func (p *Generator) Generate(ctx context.Context, req *generator.Request, llmResp *components.LLMResponse) (string, error) {
	if req.HasImages() {
		return "", generator.ErrImageUnsupported
	}
	r := p.Resolve(req)
	system, messages := r.Split()
	lastIdx := len(messages) - 1
	if lastIdx < 0 {
		return "", generator.ErrNoMessages
	}
	temperature := float64(r.Temperature)
	chatReq := cohere.ChatRequest{
		Message:     messages[lastIdx].Text(),
		Temperature: &temperature,
	}
	if r.Model != "" {
		chatReq.Model = &r.Model
	}
	if r.MaxTokens > 0 {
		chatReq.MaxTokens = &r.MaxTokens
	}
	if system != "" {
		chatReq.Preamble = &system
	}
	for _, msg := range messages[:lastIdx] {
		v := new(cohere.Message)
		msg.ToCohere(v)
		chatReq.ChatHistory = append(chatReq.ChatHistory, v)
	}
	resp, err := p.Chat(ctx, &chatReq)
	if err != nil {
		return "", err
	}
	if llmResp != nil {
		llmResp.FromCohere(resp)
		if llmResp.Model == "" {
			llmResp.Model = r.Model
		}
	}
	if resp.Text == "" {
		return "", generator.ErrEmptyResponse
	}
	return resp.Text, nil
}
