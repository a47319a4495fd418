package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/schema"
)

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"critique"}],"stop_reason":"end_turn","usage":{"input_tokens":20,"output_tokens":4}}`))
	}))
	defer srv.Close()

	g := New(anthropic.NewClient("test-key", anthropic.WithBaseURL(srv.URL)), generator.WithModel("claude-3-5-haiku-latest"))
	input := schema.NewInput("critique this").WithImages(schema.Image{Data: []byte("jpg"), Format: schema.FormatJPEG})
	req := &generator.Request{
		Temperature: 0.3,
		Messages: []components.Message{
			*components.NewMessage(components.SystemRole, schema.NewString("You are a UX critic.")),
			*components.NewMessage(components.UserRole, input),
		},
	}
	llmResp := new(components.LLMResponse)
	txt, err := g.Generate(context.Background(), req, llmResp)
	require.NoError(t, err)
	assert.Equal(t, "critique", txt)

	assert.Equal(t, "You are a UX critic.", got["system"])
	assert.Equal(t, "claude-3-5-haiku-latest", got["model"])
	assert.EqualValues(t, DefaultMaxTokens, got["max_tokens"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].(map[string]any)["type"])
	assert.Equal(t, "text", content[1].(map[string]any)["type"])

	require.NotNil(t, llmResp.Usage)
	assert.Equal(t, int64(20), llmResp.Usage.InputTokens)
	assert.Equal(t, "msg_1", llmResp.ID)
}

func TestGenerateNoMessages(t *testing.T) {
	g := New(anthropic.NewClient("k"))
	req := &generator.Request{Messages: []components.Message{*components.NewMessage(components.SystemRole, schema.NewString("only system"))}}
	_, err := g.Generate(context.Background(), req, nil)
	assert.ErrorIs(t, err, generator.ErrNoMessages)
}
