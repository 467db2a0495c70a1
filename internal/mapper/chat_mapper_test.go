package mapper

import (
	"testing"

	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"
)

func TestSessionTitle(t *testing.T) {
	m := NewChatMapper()

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "short prompt untouched",
			prompt: "What is Ohm's law?",
			want:   "What is Ohm's law?",
		},
		{
			name:   "exactly thirty characters",
			prompt: "123456789012345678901234567890",
			want:   "123456789012345678901234567890",
		},
		{
			name:   "long prompt truncated with ellipsis",
			prompt: "Explain the frequency response of an amplifier",
			want:   "Explain the frequency response...",
		},
		{
			name:   "only the first line is used",
			prompt: "Short question\nwith a very long second line that would otherwise be the title",
			want:   "Short question...",
		},
		{
			name:   "multibyte runes survive truncation",
			prompt: "Erklären Sie die Übertragungsfunktion des Filters",
			want:   "Erklären Sie die Übertragungsf...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.SessionTitle(tt.prompt); got != tt.want {
				t.Errorf("SessionTitle(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestSessionsFromHistory(t *testing.T) {
	m := NewChatMapper()

	sessions := m.SessionsFromHistory([]dto.ChatSearchMatch{
		{SessionId: "session_1", Question: "q1", Answer: "a1", Subject: "COA", Year: "3", Semester: "1"},
		{SessionId: "session_2", Question: "other", Answer: "sure", FileUsed: "notes.pdf"},
		{SessionId: "session_1", Question: "q2", Answer: "a2", Images: []string{"fig.png"}},
	})

	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	byId := map[string]*entity.ChatSession{}
	for _, s := range sessions {
		byId[s.Id] = s
	}

	first := byId["session_1"]
	if first == nil {
		t.Fatal("session_1 missing")
	}
	if len(first.Messages) != 4 {
		t.Fatalf("session_1 has %d messages, want 4", len(first.Messages))
	}
	// Each match contributes user then assistant, in record order.
	wantRoles := []entity.MessageRole{
		entity.MessageRoleUser, entity.MessageRoleAssistant,
		entity.MessageRoleUser, entity.MessageRoleAssistant,
	}
	for i, want := range wantRoles {
		if first.Messages[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, first.Messages[i].Role, want)
		}
	}
	if first.Messages[0].Content != "q1" || first.Messages[2].Content != "q2" {
		t.Errorf("user messages out of order: %q, %q", first.Messages[0].Content, first.Messages[2].Content)
	}
	if first.Title != "q1" {
		t.Errorf("title = %q, want first question", first.Title)
	}
	if first.Subject != "COA" || first.Year != "3" {
		t.Errorf("filters not carried: subject=%q year=%q", first.Subject, first.Year)
	}
	if len(first.Messages[3].Images) != 1 {
		t.Errorf("assistant images not carried")
	}

	second := byId["session_2"]
	if second == nil {
		t.Fatal("session_2 missing")
	}
	if len(second.Messages[0].Attachments) != 1 || second.Messages[0].Attachments[0].Name != "notes.pdf" {
		t.Errorf("file_used did not become an attachment: %+v", second.Messages[0].Attachments)
	}
}

func TestSessionsFromHistoryEmpty(t *testing.T) {
	m := NewChatMapper()
	if sessions := m.SessionsFromHistory(nil); len(sessions) != 0 {
		t.Errorf("got %d sessions from empty history", len(sessions))
	}
}
