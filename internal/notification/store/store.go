package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, owner_id, type, title, message, read, metadata, created_at, updated_at`

func scanNotification(s scanner) (*notification.Notification, error) {
	var (
		n       notification.Notification
		typ     string
		rawMeta []byte
	)

	if err := s.Scan(
		&n.ID, &n.OwnerID, &typ, &n.Title, &n.Message, &n.Read, &rawMeta, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = notification.Type(typ)
	n.Metadata = notification.Metadata{}

	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &n.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}

	return &n, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	meta := n.Metadata
	if meta == nil {
		meta = notification.Metadata{}
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (owner_id, type, title, message, read, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query, n.OwnerID, n.Type, n.Title, n.Message, rawMeta).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	n.Read = false

	return nil
}

func (s *Store) ListNotifications(
	ctx context.Context,
	ownerID uuid.UUID,
	filter notification.ListFilter,
) ([]*notification.Notification, error) {
	query := `SELECT ` + selectColumns + ` FROM notifications WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.UnreadOnly {
		query += " AND read = FALSE"
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT $2"

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var items []*notification.Notification

	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}

		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}

	return items, nil
}

func (s *Store) CountUnread(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND read = FALSE`
	if err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}

	return count, nil
}

func (s *Store) SetRead(ctx context.Context, ownerID, id uuid.UUID, read bool) (*notification.Notification, error) {
	query := `
		UPDATE notifications
		SET read = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + selectColumns

	n, err := scanNotification(s.db.QueryRowContext(ctx, query, read, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrNotFound
		}

		return nil, fmt.Errorf("updating notification: %w", err)
	}

	return n, nil
}

func (s *Store) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND read = FALSE
	`

	res, err := s.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting updated notifications: %w", err)
	}

	return n, nil
}

func (s *Store) DeleteNotification(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}

	if n == 0 {
		return notification.ErrNotFound
	}

	return nil
}
