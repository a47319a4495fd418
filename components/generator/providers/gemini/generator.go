package gemini

import (
	"context"
	"strings"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
)

type Generator struct {
	*gemini.Client

	generator.Options
}

var _ generator.Generator = (*Generator)(nil)

func (p *Generator) SetClient(clt *gemini.Client) {
	p.Client = clt
}

func New(client *gemini.Client, opts ...generator.Option) *Generator {
	i := &Generator{
		Client: client,
	}
	generator.WithProvider(generator.ProviderGemini)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Generator) Generate(ctx context.Context, req *generator.Request, llmResp *components.LLMResponse) (string, error) {
	r := p.Resolve(req)
	system, messages := r.Split()
	lastIdx := len(messages) - 1
	if lastIdx < 0 {
		return "", generator.ErrNoMessages
	}
	model := p.GenerativeModel(r.Model)
	model.SetTemperature(r.Temperature)
	if r.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(r.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &gemini.Content{
			Parts: []gemini.Part{gemini.Text(system)},
		}
	}
	cs := model.StartChat()
	for _, msg := range messages[:lastIdx] {
		cs.History = append(cs.History, msg.ToGemini())
	}
	resp, err := cs.SendMessage(ctx, messages[lastIdx].ToGemini().Parts...)
	if err != nil {
		return "", err
	}
	if llmResp != nil {
		llmResp.FromGemini(r.Model, resp)
	}
	txt := ResponseText(resp)
	if txt == "" {
		return "", generator.ErrEmptyResponse
	}
	return txt, nil
}

// ResponseText joins the text parts of the first candidate
func ResponseText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(gemini.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
