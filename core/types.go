package core

// IncomingMessage is a chat message normalised by a platform adapter.
type IncomingMessage struct {
	Platform  string
	UserID    string
	UserName  string
	ChatID    string
	MessageID string
	Content   string

	IsVideo       bool
	VideoData     []byte
	VideoName     string
	VideoMimeType string
}

// Responder sends answers back through the platform the message came from.
type Responder interface {
	SendText(chatID string, text string) error
	ReplyText(chatID string, originalMsgID string, text string) error
	SendReaction(chatID string, messageID string, emoji string) error
}
