package notification_test

import (
	"context"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

// memRepo keeps notifications oldest first.
type memRepo struct {
	items []*notification.Notification
	limit int
}

func (m *memRepo) CreateNotification(_ context.Context, n *notification.Notification) error {
	n.ID = uuid.New()
	m.items = append(m.items, n)

	return nil
}

func (m *memRepo) ListNotifications(_ context.Context, ownerID uuid.UUID, f notification.ListFilter) ([]*notification.Notification, error) {
	m.limit = f.Limit

	var out []*notification.Notification

	for _, n := range slices.Backward(m.items) {
		if n.OwnerID != ownerID || (f.UnreadOnly && n.Read) {
			continue
		}

		out = append(out, n)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}

	return out, nil
}

func (m *memRepo) CountUnread(_ context.Context, ownerID uuid.UUID) (int, error) {
	count := 0

	for _, n := range m.items {
		if n.OwnerID == ownerID && !n.Read {
			count++
		}
	}

	return count, nil
}

func (m *memRepo) find(ownerID, id uuid.UUID) *notification.Notification {
	for _, n := range m.items {
		if n.ID == id && n.OwnerID == ownerID {
			return n
		}
	}

	return nil
}

func (m *memRepo) SetRead(_ context.Context, ownerID, id uuid.UUID, read bool) (*notification.Notification, error) {
	n := m.find(ownerID, id)
	if n == nil {
		return nil, notification.ErrNotFound
	}

	n.Read = read

	return n, nil
}

func (m *memRepo) MarkAllRead(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64

	for _, n := range m.items {
		if n.OwnerID == ownerID && !n.Read {
			n.Read = true
			count++
		}
	}

	return count, nil
}

func (m *memRepo) DeleteNotification(_ context.Context, ownerID, id uuid.UUID) error {
	if m.find(ownerID, id) == nil {
		return notification.ErrNotFound
	}

	m.items = slices.DeleteFunc(m.items, func(n *notification.Notification) bool { return n.ID == id })

	return nil
}

func seed(t *testing.T, repo *memRepo, ownerID uuid.UUID, n int) []*notification.Notification {
	t.Helper()

	out := make([]*notification.Notification, 0, n)

	for range n {
		item := &notification.Notification{OwnerID: ownerID, Type: notification.TypeExpenseCreated, Title: "Expense Recorded"}
		require.NoError(t, repo.CreateNotification(context.Background(), item))

		out = append(out, item)
	}

	return out
}

func TestService_ListNewestFirstWithUnreadCount(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := notification.NewService(repo)

	owner := uuid.New()
	items := seed(t, repo, owner, 60)
	seed(t, repo, uuid.New(), 3)

	_, err := svc.SetRead(ctx, owner, items[59].ID, true)
	require.NoError(t, err)

	res, err := svc.List(ctx, owner, false)
	require.NoError(t, err)

	assert.Equal(t, notification.ListLimit, repo.limit)
	assert.Len(t, res.Notifications, notification.ListLimit)
	assert.Equal(t, items[59].ID, res.Notifications[0].ID)
	assert.Equal(t, 59, res.UnreadCount)

	res, err = svc.List(ctx, owner, true)
	require.NoError(t, err)

	assert.Equal(t, items[58].ID, res.Notifications[0].ID)
}

func TestService_ReadAllAndToggle(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := notification.NewService(repo)

	owner := uuid.New()
	items := seed(t, repo, owner, 3)

	updated, err := svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, updated)

	n, err := svc.SetRead(ctx, owner, items[1].ID, false)
	require.NoError(t, err)
	assert.False(t, n.Read)

	res, err := svc.List(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, 1, res.UnreadCount)
}

func TestService_ForeignNotificationIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	svc := notification.NewService(repo)

	items := seed(t, repo, uuid.New(), 1)
	stranger := uuid.New()

	_, err := svc.SetRead(ctx, stranger, items[0].ID, true)
	assert.True(t, apperr.IsNotFound(err))
	assert.EqualError(t, err, "Notification not found")

	err = svc.Delete(ctx, stranger, items[0].ID)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, items[0].OwnerID, items[0].ID))
	assert.Empty(t, repo.items)
}
