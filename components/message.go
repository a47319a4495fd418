package components

import (
	cohere "github.com/cohere-ai/cohere-go/v2"
	gemini "github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/uxcrew/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'assistant')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
)

// Message  Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Text returns message content as the text sent to a model
func (m Message) Text() string {
	if m.content == nil {
		return ""
	}
	return schema.Stringify(m.content)
}

// Attachement returns message attachement
func (m Message) Attachement() *schema.Attachement {
	if m.content == nil {
		return nil
	}
	return m.content.Attachement()
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	attachement := m.Attachement()
	if !attachement.HasImages() {
		dist.Content = m.Text()
		return
	}
	dist.MultiContent = make([]openai.ChatMessagePart, 0, len(attachement.Images)+1)
	dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: m.Text(),
	})
	for _, img := range attachement.Images {
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
}

// ToAnthropic convert message to anthropic Message
// system messages are carried by the request, not by the message list
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.role)
	attachement := m.Attachement()
	if attachement.HasImages() {
		dist.Content = make([]anthropic.MessageContent, 0, len(attachement.Images)+1)
		for _, img := range attachement.Images {
			imgSource := anthropic.MessageContentSource{
				Type:      "base64",
				MediaType: img.MimeType(),
				Data:      img.Base64(),
			}
			dist.Content = append(dist.Content, anthropic.NewImageMessageContent(imgSource))
		}
	}
	dist.Content = append(dist.Content, anthropic.NewTextMessageContent(m.Text()))
}

// ToCohere convert message to cohere Message
func (m Message) ToCohere(dist *cohere.Message) {
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = &cohere.ChatMessage{
			Message: m.Text(),
		}
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = &cohere.ChatMessage{
			Message: m.Text(),
		}
	default:
		dist.Role = "USER"
		dist.User = &cohere.ChatMessage{
			Message: m.Text(),
		}
	}
}

// ToGemini convert message to gemini Content
func (m Message) ToGemini() *gemini.Content {
	role := "user"
	if m.role == AssistantRole {
		role = "model"
	}
	attachement := m.Attachement()
	parts := make([]gemini.Part, 0, 2)
	if attachement.HasImages() {
		for _, img := range attachement.Images {
			parts = append(parts, gemini.ImageData(img.Format, img.Data))
		}
	}
	parts = append(parts, gemini.Text(m.Text()))
	return &gemini.Content{
		Role:  role,
		Parts: parts,
	}
}
