package cohere

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/schema"
)

func TestGenerateRejectsImages(t *testing.T) {
	g := New(cohereClient.NewClient())
	input := schema.NewInput("describe").WithImages(schema.Image{Data: []byte("png"), Format: schema.FormatPNG})
	req := &generator.Request{Messages: []components.Message{*components.NewMessage(components.UserRole, input)}}
	_, err := g.Generate(context.Background(), req, nil)
	assert.ErrorIs(t, err, generator.ErrImageUnsupported)
	assert.Equal(t, generator.ProviderCohere, g.Provider())
}

func TestGenerateKeepsConfiguredModel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Looks clean.","generation_id":"g1","meta":{"api_version":{"version":"1"},"tokens":{"input_tokens":12,"output_tokens":3}}}`))
	}))
	defer srv.Close()

	g := New(cohereClient.NewClient(cohereOption.WithBaseURL(srv.URL), cohereOption.WithToken("k")), generator.WithModel("command-r-plus"))
	req := &generator.Request{Messages: []components.Message{
		*components.NewMessage(components.SystemRole, schema.NewString("You are a UX critic.")),
		*components.NewMessage(components.UserRole, schema.NewInput("critique the form")),
	}}
	resp := new(components.LLMResponse)
	text, err := g.Generate(context.Background(), req, resp)
	require.NoError(t, err)

	assert.Equal(t, "Looks clean.", text)
	assert.Equal(t, "command-r-plus", resp.Model)
	assert.Equal(t, "g1", resp.ID)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, components.LLMUsage{InputTokens: 12, OutputTokens: 3}, *resp.Usage)
	assert.Equal(t, "command-r-plus", got["model"])
	assert.Equal(t, "critique the form", got["message"])
	assert.Equal(t, "You are a UX critic.", got["preamble"])
}
