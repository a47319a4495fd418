package schema

// Input is a plain user message which may carry image attachements
type Input struct {
	Base
	// ChatMessage is the text of the message
	ChatMessage string `json:"chat_message"`
}

// NewInput returns a new Input
func NewInput(msg string) *Input {
	return &Input{
		ChatMessage: msg,
	}
}

// String implements fmt.Stringer
func (i Input) String() string {
	return i.ChatMessage
}

// WithImages attaches images to the input and returns it
func (i *Input) WithImages(images ...Image) *Input {
	if len(images) == 0 {
		return i
	}
	i.SetAttachement(&Attachement{Images: images})
	return i
}
