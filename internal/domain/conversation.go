package domain

import "strings"

// Part is one chunk of message content. The wire format allows several parts
// per message but in practice every message carries exactly one.
type Part struct {
	Text string `json:"text"`
}

// Message is a single entry in a conversation timeline. Messages are
// append-only and never edited once appended.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewMessage builds a single-part message.
func NewMessage(role Role, text string) Message {
	return Message{
		Role:  role,
		Parts: []Part{{Text: text}},
	}
}

// Text joins all parts into one string.
func (m Message) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Conversation is one persisted chat. ID is empty until the first store
// write assigns one; after that it never changes.
type Conversation struct {
	ID       ConversationID
	Title    string
	Mode     PersonalityKey
	Owner    Username
	Messages []Message
}
