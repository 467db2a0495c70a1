package service

import (
	"path/filepath"
	"testing"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/entity"
	"echolearn-client/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T) (*credstore.Store, INotificationService) {
	t.Helper()
	store, err := credstore.Open(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, err)
	return store, NewNotificationService(store, logger.NewNopLogger())
}

func TestAddPrependsUnread(t *testing.T) {
	_, svc := newNotificationFixture(t)

	svc.Add(entity.NotificationInfo, "first")
	svc.Add(entity.NotificationError, "second")

	notifs := svc.Notifications()
	require.Len(t, notifs, 2)
	assert.Equal(t, "second", notifs[0].Message)
	assert.Equal(t, "first", notifs[1].Message)
	assert.False(t, notifs[0].Read)
	assert.NotEmpty(t, notifs[0].Id)
	assert.Equal(t, 2, svc.UnreadCount())
}

func TestMarkAsRead(t *testing.T) {
	_, svc := newNotificationFixture(t)
	svc.Add(entity.NotificationInfo, "one")
	svc.Add(entity.NotificationInfo, "two")

	id := svc.Notifications()[0].Id
	svc.MarkAsRead(id)
	assert.Equal(t, 1, svc.UnreadCount())

	// Unknown ids are a no-op.
	svc.MarkAsRead("nope")
	assert.Equal(t, 1, svc.UnreadCount())

	svc.MarkAllAsRead()
	assert.Zero(t, svc.UnreadCount())
}

func TestNotificationsSurviveRestart(t *testing.T) {
	store, svc := newNotificationFixture(t)
	svc.Add(entity.NotificationSuccess, "saved")
	svc.Add(entity.NotificationWarning, "careful")
	svc.MarkAsRead(svc.Notifications()[0].Id)

	before := svc.Notifications()

	// A new service over the same store sees the identical list.
	reloaded := NewNotificationService(store, logger.NewNopLogger())
	after := reloaded.Notifications()

	require.Len(t, after, 2)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, reloaded.UnreadCount())
}

func TestClearNotifications(t *testing.T) {
	store, svc := newNotificationFixture(t)
	svc.Add(entity.NotificationInfo, "gone soon")

	svc.Clear()
	assert.Empty(t, svc.Notifications())

	// The cleared state persists too.
	reloaded := NewNotificationService(store, logger.NewNopLogger())
	assert.Empty(t, reloaded.Notifications())
}
