package generator

// Options holds the configuration shared by every Generator provider
type Options struct {
	// provider specifies the generation service to use (e.g., "openai", "anthropic")
	provider Provider
	// model is used when a request does not name one
	model string
	// maxTokens is used when a request does not set one
	maxTokens int
}

// Option is a function type for configuring Options.
type Option func(*Options)

func WithProvider(provider Provider) Option {
	return func(o *Options) {
		o.provider = provider
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.maxTokens = maxTokens
	}
}

func (o Options) Provider() Provider {
	return o.provider
}

func (o Options) Model() string {
	return o.model
}

func (o Options) MaxTokens() int {
	return o.maxTokens
}

// Resolve fills empty request settings with defaults
func (o Options) Resolve(req *Request) Request {
	ret := *req
	if ret.Model == "" {
		ret.Model = o.model
	}
	if ret.MaxTokens <= 0 {
		ret.MaxTokens = o.maxTokens
	}
	return ret
}
