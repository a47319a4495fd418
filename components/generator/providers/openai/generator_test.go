package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/schema"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	return New(openai.NewClientWithConfig(cfg), generator.WithModel("gpt-4o-mini"), generator.WithMaxTokens(256))
}

func TestGenerate(t *testing.T) {
	var got openai.ChatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"a login form"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	})
	input := schema.NewInput("describe").WithImages(schema.Image{Data: []byte("png"), Format: schema.FormatPNG})
	req := &generator.Request{
		Temperature: 0.3,
		Messages: []components.Message{
			*components.NewMessage(components.SystemRole, schema.NewString("You describe UIs.")),
			*components.NewMessage(components.UserRole, input),
		},
	}
	llmResp := new(components.LLMResponse)
	txt, err := g.Generate(context.Background(), req, llmResp)
	require.NoError(t, err)
	assert.Equal(t, "a login form", txt)
	assert.Equal(t, generator.ProviderOpenAI, g.Provider())

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "You describe UIs.", got.Messages[0].Content)
	require.Len(t, got.Messages[1].MultiContent, 2)
	assert.Equal(t, "data:image/png;base64,cG5n", got.Messages[1].MultiContent[1].ImageURL.URL)

	require.NotNil(t, llmResp.Usage)
	assert.Equal(t, int64(12), llmResp.Usage.InputTokens)
	assert.Equal(t, int64(3), llmResp.Usage.OutputTokens)
	assert.Equal(t, "chatcmpl-1", llmResp.ID)
}

func TestGenerateError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})
	req := &generator.Request{Messages: []components.Message{*components.NewMessage(components.UserRole, schema.NewString("hi"))}}
	_, err := g.Generate(context.Background(), req, nil)
	require.Error(t, err)
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestGenerateEmpty(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	})
	req := &generator.Request{Messages: []components.Message{*components.NewMessage(components.UserRole, schema.NewString("hi"))}}
	_, err := g.Generate(context.Background(), req, nil)
	assert.ErrorIs(t, err, generator.ErrEmptyResponse)
}
