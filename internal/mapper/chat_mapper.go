package mapper

import (
	"fmt"
	"sort"
	"time"

	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"

	"github.com/google/uuid"
)

const titleLimit = 30

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// SessionTitle derives a session title from the leading line of a prompt:
// at most 30 characters, with an ellipsis when the prompt was longer.
func (m *ChatMapper) SessionTitle(prompt string) string {
	firstLine := prompt
	for i := 0; i < len(prompt); i++ {
		if prompt[i] == '\n' {
			firstLine = prompt[:i]
			break
		}
	}
	title := []rune(firstLine)
	if len(title) > titleLimit {
		title = title[:titleLimit]
	}
	if len([]rune(prompt)) > titleLimit {
		return string(title) + "..."
	}
	return string(title)
}

// SessionsFromHistory reconstructs chat sessions from the flat list of
// question/answer pairs returned by /search_chats. Matches sharing a session
// id collapse into one session; each match contributes a user message then
// an assistant message, in the order the records were returned. Sessions
// come back most recent first.
func (m *ChatMapper) SessionsFromHistory(matches []dto.ChatSearchMatch) []*entity.ChatSession {
	now := time.Now()
	byId := make(map[string]*entity.ChatSession)
	var ordered []*entity.ChatSession

	for _, match := range matches {
		session, exists := byId[match.SessionId]
		if !exists {
			session = &entity.ChatSession{
				Id:        match.SessionId,
				Title:     m.SessionTitle(match.Question),
				Subject:   match.Subject,
				Semester:  match.Semester,
				Year:      match.Year,
				CreatedAt: now,
				UpdatedAt: now,
				Messages:  []entity.ChatMessage{},
			}
			byId[match.SessionId] = session
			ordered = append(ordered, session)
		}

		userMsg := entity.ChatMessage{
			Id:        fmt.Sprintf("msg_%s", uuid.New().String()),
			Content:   match.Question,
			Role:      entity.MessageRoleUser,
			Timestamp: now,
		}
		if match.FileUsed != "" {
			userMsg.Attachments = []entity.Attachment{{
				Id:   fmt.Sprintf("att_%s", uuid.New().String()),
				Name: match.FileUsed,
				Type: "file",
			}}
		}
		session.Messages = append(session.Messages, userMsg)

		session.Messages = append(session.Messages, entity.ChatMessage{
			Id:        fmt.Sprintf("msg_%s", uuid.New().String()),
			Content:   match.Answer,
			Role:      entity.MessageRoleAssistant,
			Timestamp: now,
			Images:    match.Images,
		})
	}

	// Recency order; the stable sort keeps first-seen order for equal
	// timestamps, which is all of them on a fresh hydration.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})

	return ordered
}
