package providers

import (
	"context"
	"fmt"

	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	genai "github.com/google/generative-ai-go/genai"
	anthropicSDK "github.com/liushuangls/go-anthropic/v2"
	openaiSDK "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/components/generator/providers/anthropic"
	"github.com/bububa/uxcrew/components/generator/providers/cohere"
	"github.com/bububa/uxcrew/components/generator/providers/gemini"
	"github.com/bububa/uxcrew/components/generator/providers/openai"
	"github.com/bububa/uxcrew/config"
)

var (
	FromOpenAI    = openai.New
	FromAnthropic = anthropic.New
	FromCohere    = cohere.New
	FromGemini    = gemini.New
)

// New creates the Generator of the configured provider.
// The returned Generator of gemini holds a client which should be closed with Close.
func New(ctx context.Context, cfg *config.Provider) (generator.Generator, error) {
	opts := []generator.Option{
		generator.WithModel(cfg.Model),
		generator.WithMaxTokens(cfg.MaxTokens),
	}
	switch cfg.Name {
	case generator.ProviderOpenAI:
		return FromOpenAI(NewOpenAIClient(cfg), opts...), nil
	case generator.ProviderAnthropic:
		clientOpts := make([]anthropicSDK.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, anthropicSDK.WithBaseURL(cfg.BaseURL))
		}
		return FromAnthropic(anthropicSDK.NewClient(cfg.APIKey, clientOpts...), opts...), nil
	case generator.ProviderCohere:
		requestOpts := make([]cohereOption.RequestOption, 0, 2)
		requestOpts = append(requestOpts, cohereOption.WithToken(cfg.APIKey))
		if cfg.BaseURL != "" {
			requestOpts = append(requestOpts, cohereOption.WithBaseURL(cfg.BaseURL))
		}
		return FromCohere(cohereClient.NewClient(requestOpts...), opts...), nil
	case generator.ProviderGemini:
		clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
		}
		clt, err := genai.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return FromGemini(clt, opts...), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
}

// NewOpenAIClient returns an openai client for the configured credential
func NewOpenAIClient(cfg *config.Provider) *openaiSDK.Client {
	clientCfg := openaiSDK.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openaiSDK.NewClientWithConfig(clientCfg)
}
