package generator

type Provider = string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCohere    Provider = "cohere"
	ProviderGemini    Provider = "gemini"
)

// SupportsImages reports whether a provider accepts image attachments
func SupportsImages(provider Provider) bool {
	return provider != ProviderCohere
}
