package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
)

type Generator struct {
	*openai.Client

	generator.Options
}

var _ generator.Generator = (*Generator)(nil)

func (p *Generator) SetClient(clt *openai.Client) {
	p.Client = clt
}

func New(client *openai.Client, opts ...generator.Option) *Generator {
	i := &Generator{
		Client: client,
	}
	generator.WithProvider(generator.ProviderOpenAI)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Generator) Generate(ctx context.Context, req *generator.Request, llmResp *components.LLMResponse) (string, error) {
	r := p.Resolve(req)
	chatReq := openai.ChatCompletionRequest{
		Model:       r.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(r.Messages)),
	}
	for _, msg := range r.Messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	resp, err := p.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if llmResp != nil {
		llmResp.FromOpenAI(&resp)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", generator.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
