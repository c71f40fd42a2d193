package domain

import "time"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (m ChatMessage) IsUser() bool { return m.Role == ChatRoleUser }

// AssistantGreeting opens every new transcript.
const AssistantGreeting = "Hello! I'm your AI compliance assistant. I can help you with:\n\n" +
	"• Understanding your deadlines\n" +
	"• Analyzing documents\n" +
	"• Checking compliance status\n" +
	"• Answering questions about your documents\n\n" +
	"How can I help you today?"
