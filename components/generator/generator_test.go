package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/schema"
)

func TestRequestSplit(t *testing.T) {
	req := Request{
		Messages: []components.Message{
			*components.NewMessage(components.SystemRole, schema.NewString("be precise")),
			*components.NewMessage(components.UserRole, schema.NewString("hello")),
			*components.NewMessage(components.SystemRole, schema.NewString("")),
		},
	}
	system, messages := req.Split()
	assert.Equal(t, "be precise", system)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text())
	assert.False(t, req.HasImages())
}

func TestOptionsResolve(t *testing.T) {
	var opts Options
	for _, opt := range []Option{WithModel("m"), WithMaxTokens(100)} {
		opt(&opts)
	}
	got := opts.Resolve(&Request{Temperature: 0.3})
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 100, got.MaxTokens)

	got = opts.Resolve(&Request{Model: "x", MaxTokens: 5})
	assert.Equal(t, "x", got.Model)
	assert.Equal(t, 5, got.MaxTokens)
}
