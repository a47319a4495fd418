package agents

import (
	"context"
	"errors"

	"github.com/bububa/uxcrew/components"
	"github.com/bububa/uxcrew/components/generator"
	"github.com/bububa/uxcrew/components/systemprompt"
	"github.com/bububa/uxcrew/components/systemprompt/cot"
	"github.com/bububa/uxcrew/schema"
)

// ErrNoClient is returned by Run when the agent has no generator client
var ErrNoClient = errors.New("agent has no generator client")

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client generator.Generator
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
}

// Agent class for chat agents.
// This class provides the core functionality for handling chat interactions, including managing memory,
// generating system prompts, and obtaining responses from a language model.
type Agent struct {
	Config
	startHook func(context.Context, *Agent, *schema.Input)
	endHook   func(context.Context, *Agent, *schema.Input, *schema.String, *components.LLMResponse)
	errorHook func(context.Context, *Agent, *schema.Input, *components.LLMResponse, error)
}

// NewAgent initializes the Agent
func NewAgent(options ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	return ret
}

// Memory returns the chat history of the agent
func (a *Agent) Memory() *components.Memory {
	return a.memory
}

func (a Agent) Name() string {
	return a.name
}

func (a *Agent) SetStartHook(fn func(context.Context, *Agent, *schema.Input)) {
	a.startHook = fn
}

func (a *Agent) SetEndHook(fn func(context.Context, *Agent, *schema.Input, *schema.String, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent) SetErrorHook(fn func(context.Context, *Agent, *schema.Input, *components.LLMResponse, error)) {
	a.errorHook = fn
}

// Messages returns the system prompt followed by the chat history, the messages sent on the next call
func (a *Agent) Messages() []components.Message {
	messages := make([]components.Message, 0, a.memory.MessageCount()+1)
	msg := components.NewMessage(components.SystemRole, schema.NewString(a.systemPromptGenerator.Generate()))
	messages = append(messages, *msg)
	return append(messages, a.memory.History()...)
}

// response obtains a response from the language model synchronously
func (a *Agent) response(ctx context.Context, llmResp *components.LLMResponse) (string, error) {
	if a.client == nil {
		return "", ErrNoClient
	}
	req := generator.Request{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages:    a.Messages(),
	}
	return a.client.Generate(ctx, &req, llmResp)
}

// Run runs the chat agent with the given user input synchronously.
func (a *Agent) Run(ctx context.Context, userInput *schema.Input, output *schema.String, llmResp *components.LLMResponse) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, userInput)
	}
	txt, err := a.response(ctx, llmResp)
	if err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, llmResp, err)
		}
		return err
	}
	*output = schema.String(txt)
	a.memory.NewMessage(components.AssistantRole, schema.NewString(txt))
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, llmResp)
	}
	return nil
}

// SystemPrompt returns the system prompt
func (a *Agent) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}
