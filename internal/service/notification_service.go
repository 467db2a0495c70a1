package service

import (
	"sync"
	"time"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/logger"

	"github.com/google/uuid"
)

type INotificationService interface {
	Add(kind entity.NotificationType, message string)
	Notifications() []entity.Notification
	UnreadCount() int
	MarkAsRead(id string)
	MarkAllAsRead()
	Clear()
}

// notificationService keeps the transient user notifications in memory and
// mirrors every mutation to the credential store so the list survives
// restarts verbatim.
type notificationService struct {
	mu     sync.Mutex
	items  []entity.Notification
	creds  *credstore.Store
	logger logger.ILogger
}

func NewNotificationService(creds *credstore.Store, log logger.ILogger) INotificationService {
	s := &notificationService{
		creds:  creds,
		logger: log,
	}

	var saved []entity.Notification
	if _, err := creds.GetJSON(credstore.KeyNotifications, &saved); err != nil {
		log.Warn("NotificationService", "Discarding unreadable persisted notifications", map[string]interface{}{"error": err.Error()})
	} else {
		s.items = saved
	}

	return s
}

func (s *notificationService) Add(kind entity.NotificationType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notif := entity.Notification{
		Id:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Read:      false,
	}
	s.items = append([]entity.Notification{notif}, s.items...)
	s.persist()
}

func (s *notificationService) Notifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *notificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAsRead flips a single notification; unknown ids are a no-op.
func (s *notificationService) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Id == id {
			s.items[i].Read = true
			s.persist()
			return
		}
	}
}

func (s *notificationService) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.persist()
}

func (s *notificationService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// persist writes the full list; callers hold the lock.
func (s *notificationService) persist() {
	list := s.items
	if list == nil {
		list = []entity.Notification{}
	}
	if err := s.creds.SetJSON(credstore.KeyNotifications, list); err != nil {
		s.logger.Error("NotificationService", "Failed to persist notifications", map[string]interface{}{"error": err})
	}
}
