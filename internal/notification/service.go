package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
)

// ListLimit caps how many notifications a listing returns, newest first.
const ListLimit = 50

type Repository interface {
	Writer
	ListNotifications(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Notification, error)
	CountUnread(ctx context.Context, ownerID uuid.UUID) (int, error)
	SetRead(ctx context.Context, ownerID, id uuid.UUID, read bool) (*Notification, error)
	MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, ownerID, id uuid.UUID) error
}

type ListFilter struct {
	UnreadOnly bool
	Limit      int
}

type ListResult struct {
	Notifications []*Notification
	UnreadCount   int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, unreadOnly bool) (*ListResult, error) {
	items, err := s.repo.ListNotifications(ctx, ownerID, ListFilter{UnreadOnly: unreadOnly, Limit: ListLimit})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting unread notifications: %w", err)
	}

	return &ListResult{Notifications: items, UnreadCount: unread}, nil
}

func (s *Service) SetRead(ctx context.Context, ownerID, id uuid.UUID, read bool) (*Notification, error) {
	n, err := s.repo.SetRead(ctx, ownerID, id, read)
	if err != nil {
		return nil, notFound(err)
	}

	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return notFound(s.repo.DeleteNotification(ctx, ownerID, id))
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Notification")
	}

	return err
}
