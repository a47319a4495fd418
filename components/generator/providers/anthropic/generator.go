package anthropic

import (
	"context"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
)

// DefaultMaxTokens is sent when neither the request nor the options set a limit, the messages API requires one
const DefaultMaxTokens = 4096

type Generator struct {
	*anthropic.Client

	generator.Options
}

var _ generator.Generator = (*Generator)(nil)

func (p *Generator) SetClient(clt *anthropic.Client) {
	p.Client = clt
}

func New(client *anthropic.Client, opts ...generator.Option) *Generator {
	i := &Generator{
		Client: client,
	}
	generator.WithProvider(generator.ProviderAnthropic)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Generator) Generate(ctx context.Context, req *generator.Request, llmResp *components.LLMResponse) (string, error) {
	r := p.Resolve(req)
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	system, messages := r.Split()
	if len(messages) == 0 {
		return "", generator.ErrNoMessages
	}
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(r.Model),
		System:      system,
		Temperature: &r.Temperature,
		MaxTokens:   r.MaxTokens,
		Messages:    make([]anthropic.Message, 0, len(messages)),
	}
	for _, msg := range messages {
		v := new(anthropic.Message)
		msg.ToAnthropic(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	resp, err := p.CreateMessages(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if llmResp != nil {
		llmResp.FromAnthropic(&resp)
	}
	txt := resp.GetFirstContentText()
	if txt == "" {
		return "", generator.ErrEmptyResponse
	}
	return txt, nil
}
