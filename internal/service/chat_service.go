package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"echolearn-client/internal/constant"
	"echolearn-client/internal/credstore"
	"echolearn-client/internal/dto"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/mapper"
	"echolearn-client/internal/pkg/logger"
	"echolearn-client/internal/transport"

	"github.com/google/uuid"
)

// ErrNoActiveSession is returned when a send arrives with no current
// session; a fresh one has been created and the caller must resubmit.
var ErrNoActiveSession = errors.New("no active session; a new one was created, resubmit the message")

type Selection struct {
	Year      string
	Semester  string
	SubjectId string
}

type IChatService interface {
	CreateSession() *entity.ChatSession
	SelectSession(id string)
	CurrentSession() *entity.ChatSession
	Sessions() []*entity.ChatSession
	SendMessage(ctx context.Context, content string, attachments []entity.Attachment) error
	HydrateFromHistory(ctx context.Context, routeSessionId string) error
	ClearCurrentSession()
	ExportCurrentSession() (filename, content string, err error)
	SetYear(year string)
	SetSemester(semester string)
	SetSubject(subjectId string)
	CurrentSelection() Selection
	FiltersLocked() bool
	IsProcessing() bool
}

type chatService struct {
	api           *transport.Client
	creds         *credstore.Store
	auth          IAuthService
	notifications INotificationService
	nav           Navigator
	mapper        *mapper.ChatMapper
	logger        logger.ILogger

	mu         sync.Mutex
	sessions   []*entity.ChatSession
	current    *entity.ChatSession
	selection  Selection
	locked     bool
	processing bool
}

func NewChatService(api *transport.Client, creds *credstore.Store, auth IAuthService, notifications INotificationService, nav Navigator, log logger.ILogger) IChatService {
	return &chatService{
		api:           api,
		creds:         creds,
		auth:          auth,
		notifications: notifications,
		nav:           nav,
		mapper:        mapper.NewChatMapper(),
		logger:        log,
	}
}

// CreateSession inserts a fresh empty session at the front of the list,
// makes it current, and resets selections and the filter lock.
func (s *chatService) CreateSession() *entity.ChatSession {
	now := time.Now()
	session := &entity.ChatSession{
		Id:        fmt.Sprintf("session_%d", now.UnixMilli()),
		Title:     "New Conversation",
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []entity.ChatMessage{},
	}

	s.mu.Lock()
	s.sessions = append([]*entity.ChatSession{session}, s.sessions...)
	s.current = session
	s.selection = Selection{}
	s.locked = false
	s.mu.Unlock()

	if err := s.creds.SetSessionLocked(session.Id, false); err != nil {
		s.logger.Error("ChatService", "Failed to persist lock state", map[string]interface{}{"error": err, "session_id": session.Id})
	}

	s.nav.NavigateTo(RouteChat + "/" + session.Id)
	return session
}

// SelectSession switches the current session; an unknown id is a no-op.
// Filter selections and the persisted lock for that id are restored.
func (s *chatService) SelectSession(id string) {
	s.mu.Lock()
	var found *entity.ChatSession
	for _, session := range s.sessions {
		if session.Id == id {
			found = session
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return
	}
	s.current = found
	s.selection = selectionFromSession(found)
	s.locked = s.creds.SessionLocked(id)
	s.mu.Unlock()

	s.nav.NavigateTo(RouteChat + "/" + id)
}

func (s *chatService) CurrentSession() *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *chatService) Sessions() []*entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// SendMessage appends the user message, locks filters on the session's first
// message, and dispatches either the plain or the multipart chat request.
// The user message is never rolled back on failure.
func (s *chatService) SendMessage(ctx context.Context, content string, attachments []entity.Attachment) error {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		s.CreateSession()
		return ErrNoActiveSession
	}
	session := s.current
	selection := s.selection

	if len(session.Messages) == 0 && !s.locked {
		s.locked = true
		if err := s.creds.SetSessionLocked(session.Id, true); err != nil {
			s.logger.Error("ChatService", "Failed to persist lock state", map[string]interface{}{"error": err, "session_id": session.Id})
		}
	}

	now := time.Now()
	userMsg := entity.ChatMessage{
		Id:          fmt.Sprintf("msg_%s", uuid.New().String()),
		Content:     content,
		Role:        entity.MessageRoleUser,
		Timestamp:   now,
		Attachments: attachments,
	}
	session.Messages = append(session.Messages, userMsg)
	session.Title = s.mapper.SessionTitle(content)
	session.UpdatedAt = now

	// Selections chosen at send time stick to the session.
	if selection.SubjectId != "" {
		session.Subject = selection.SubjectId
	}
	if selection.Semester != "" {
		session.Semester = selection.Semester
	}
	if selection.Year != "" {
		session.Year = selection.Year
	}

	s.processing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.processing = false
		s.mu.Unlock()
	}()

	subjectName := constant.SubjectName(selection.SubjectId)

	var res dto.ChatResponse
	var err error
	if len(attachments) > 0 {
		err = s.sendMultimodal(ctx, session.Id, content, selection, subjectName, attachments[0], &res)
	} else {
		err = s.api.DoJSON(ctx, http.MethodPost, "/start_chat", dto.StartChatRequest{
			Question:  content,
			SessionId: session.Id,
			Year:      selection.Year,
			Semester:  selection.Semester,
			Subject:   subjectName,
		}, &res)
	}
	if err != nil {
		s.logger.Error("ChatService", "Chat request failed", map[string]interface{}{"error": err.Error(), "session_id": session.Id})
		s.notifications.Add(entity.NotificationError, "Failed to send message. Please try again.")
		return fmt.Errorf("send message: %w", err)
	}

	s.mu.Lock()
	session.Messages = append(session.Messages, entity.ChatMessage{
		Id:        fmt.Sprintf("msg_%s", uuid.New().String()),
		Content:   res.Answer,
		Role:      entity.MessageRoleAssistant,
		Timestamp: time.Now(),
		Images:    res.Images,
	})
	session.UpdatedAt = time.Now()
	s.mu.Unlock()

	return nil
}

func (s *chatService) sendMultimodal(ctx context.Context, sessionId, content string, selection Selection, subjectName string, attachment entity.Attachment, out *dto.ChatResponse) error {
	fileContent, err := os.ReadFile(attachment.Path)
	if err != nil {
		return fmt.Errorf("read attachment %q: %w", attachment.Name, err)
	}

	fields := map[string]string{
		"question":   content,
		"session_id": sessionId,
		"year":       selection.Year,
		"semester":   selection.Semester,
		"subject":    subjectName,
	}
	return s.api.DoMultipart(ctx, "/multimodal_chat", fields, "file", attachment.Name, fileContent, out)
}

// HydrateFromHistory rebuilds the session list from the backend's flat
// question/answer history. Skips entirely when nobody is signed in. The
// route-provided session id wins; otherwise the most recent session is
// selected.
func (s *chatService) HydrateFromHistory(ctx context.Context, routeSessionId string) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	var res dto.SearchChatsResponse
	path := "/search_chats?query=" + url.QueryEscape("")
	if err := s.api.DoJSON(ctx, http.MethodGet, path, nil, &res); err != nil {
		s.logger.Error("ChatService", "Failed to fetch chat history", map[string]interface{}{"error": err.Error()})
		s.notifications.Add(entity.NotificationError, "Failed to load chat history")
		return fmt.Errorf("hydrate from history: %w", err)
	}

	sessions := s.mapper.SessionsFromHistory(res.Matches)

	s.mu.Lock()
	s.sessions = sessions

	var selected *entity.ChatSession
	for _, session := range sessions {
		if session.Id == routeSessionId {
			selected = session
			break
		}
	}
	if selected == nil && len(sessions) > 0 {
		selected = sessions[0]
	}

	if selected != nil {
		s.current = selected
		s.selection = selectionFromSession(selected)
		s.locked = s.creds.SessionLocked(selected.Id)
	}
	s.mu.Unlock()

	if selected != nil && selected.Id != routeSessionId {
		s.nav.NavigateTo(RouteChat + "/" + selected.Id)
	}
	return nil
}

// ClearCurrentSession empties the message list in place. The filter lock is
// deliberately preserved: it only ever resets with a brand-new session.
func (s *chatService) ClearCurrentSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Messages = []entity.ChatMessage{}
	s.current.UpdatedAt = time.Now()
	s.locked = s.creds.SessionLocked(s.current.Id)
}

const exportDivider = "\n---\n\n"

// ExportCurrentSession serializes the current session's messages as plain
// text blocks and proposes a filename from the sanitized title and today's
// date.
func (s *chatService) ExportCurrentSession() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", "", errors.New("no session selected")
	}

	blocks := make([]string, 0, len(s.current.Messages))
	for _, msg := range s.current.Messages {
		blocks = append(blocks, fmt.Sprintf("[%s] %s\n%s\n", msg.Role, msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Content))
	}
	content := strings.Join(blocks, exportDivider)

	filename := fmt.Sprintf("%s_%s.txt", sanitizeTitle(s.current.Title), time.Now().Format("2006-01-02"))
	return filename, content, nil
}

func (s *chatService) SetYear(year string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.selection.Year = year
	// Drop the subject when it no longer matches the year.
	if s.selection.SubjectId != "" {
		if subj := constant.FindSubject(s.selection.SubjectId); subj != nil && subj.Year != year {
			s.selection.SubjectId = ""
		}
	}
}

func (s *chatService) SetSemester(semester string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.selection.Semester = semester
	if s.selection.SubjectId != "" {
		if subj := constant.FindSubject(s.selection.SubjectId); subj != nil && subj.Semester != semester {
			s.selection.SubjectId = ""
		}
	}
}

func (s *chatService) SetSubject(subjectId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.selection.SubjectId = subjectId
}

func (s *chatService) CurrentSelection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *chatService) FiltersLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *chatService) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// selectionFromSession restores filter selections stored on a session.
// Hydrated sessions carry the backend's subject name rather than a catalog
// id, so both are accepted.
func selectionFromSession(session *entity.ChatSession) Selection {
	subjectId := session.Subject
	if constant.FindSubject(subjectId) == nil {
		subjectId = constant.SubjectIdByName(session.Subject)
	}
	return Selection{
		Year:      session.Year,
		Semester:  session.Semester,
		SubjectId: subjectId,
	}
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.ToLower(b.String())
}
