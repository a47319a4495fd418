package pipeline

import (
	"log/slog"
	"time"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/prompts"
)

// Options holds the pipeline configuration
type Options struct {
	stages    []Stage
	templates *prompts.Store
	observers []Observer
	logger    *slog.Logger
	counter   components.TokenCounter
	timeout   time.Duration
}

// Option configures a Pipeline
type Option func(*Options)

// WithStages replaces the default stages
func WithStages(stages ...Stage) Option {
	return func(o *Options) {
		o.stages = stages
	}
}

// WithTemplates sets the prompt template store, the embedded templates are used by default
func WithTemplates(store *prompts.Store) Option {
	return func(o *Options) {
		o.templates = store
	}
}

// WithObserver registers observers, called after the log observer
func WithObserver(observers ...Observer) Option {
	return func(o *Options) {
		o.observers = append(o.observers, observers...)
	}
}

// WithLogger sets the logger of the log observer
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithTokenCounter sets the counter used for prompt token estimates
func WithTokenCounter(counter components.TokenCounter) Option {
	return func(o *Options) {
		o.counter = counter
	}
}

// WithTimeout bounds the duration of a whole run, 0 means no limit
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}
