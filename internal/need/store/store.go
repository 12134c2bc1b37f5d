package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/need"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const columns = `id, owner_id, title, amount, priority, completed, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanNeed(s scanner) (*need.Need, error) {
	var (
		n        need.Need
		priority string
	)

	if err := s.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Amount, &priority, &n.Completed, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}

	n.Priority = need.Priority(priority)

	return &n, nil
}

func (s *Store) CreateNeed(ctx context.Context, n *need.Need) error {
	query := `
		INSERT INTO needs (owner_id, title, amount, priority, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, n.OwnerID, n.Title, n.Amount, n.Priority, n.Completed).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting need: %w", err)
	}

	return nil
}

func (s *Store) GetNeed(ctx context.Context, ownerID, id uuid.UUID) (*need.Need, error) {
	query := `SELECT ` + columns + ` FROM needs WHERE id = $1 AND owner_id = $2`

	n, err := scanNeed(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, need.ErrNotFound
		}

		return nil, fmt.Errorf("getting need: %w", err)
	}

	return n, nil
}

func (s *Store) ListNeeds(ctx context.Context, ownerID uuid.UUID) ([]*need.Need, error) {
	query := `SELECT ` + columns + ` FROM needs WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing needs: %w", err)
	}
	defer rows.Close()

	var needs []*need.Need

	for rows.Next() {
		n, err := scanNeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning need: %w", err)
		}

		needs = append(needs, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating needs: %w", err)
	}

	return needs, nil
}

func (s *Store) UpdateNeed(ctx context.Context, n *need.Need) error {
	query := `
		UPDATE needs
		SET title = $1, amount = $2, priority = $3, completed = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, n.Title, n.Amount, n.Priority, n.Completed, n.ID, n.OwnerID).
		Scan(&n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return need.ErrNotFound
		}

		return fmt.Errorf("updating need: %w", err)
	}

	return nil
}

// DeleteNeed removes the need and returns it as it was.
func (s *Store) DeleteNeed(ctx context.Context, ownerID, id uuid.UUID) (*need.Need, error) {
	query := `DELETE FROM needs WHERE id = $1 AND owner_id = $2 RETURNING ` + columns

	n, err := scanNeed(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, need.ErrNotFound
		}

		return nil, fmt.Errorf("deleting need: %w", err)
	}

	return n, nil
}
