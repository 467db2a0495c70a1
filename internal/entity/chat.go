package entity

import "time"

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Attachment is a locally-created reference to a file the user attached to
// a message. Only the first attachment is uploaded with a multimodal request.
type Attachment struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// ChatMessage is immutable once appended to a session.
type ChatMessage struct {
	Id          string       `json:"id"`
	Content     string       `json:"content"`
	Role        MessageRole  `json:"role"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Images      []string     `json:"images,omitempty"`
}

// ChatSession holds an append-only, insertion-ordered message list.
// Ids are time-based tokens for locally created sessions, or the backend
// session identifier for sessions hydrated from history.
type ChatSession struct {
	Id        string        `json:"id"`
	Title     string        `json:"title"`
	Subject   string        `json:"subject,omitempty"`
	Semester  string        `json:"semester,omitempty"`
	Year      string        `json:"year,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `json:"messages"`
}
