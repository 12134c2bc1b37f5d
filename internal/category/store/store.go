package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (string, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE owner_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var c string

	err := s.db.QueryRowContext(ctx, query, ownerID, description).Scan(&c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category rule: %w", err)
	}

	return c, nil
}

func (s *Store) CreateRule(ctx context.Context, r *category.Rule) error {
	query := `
		INSERT INTO category_rules (owner_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, r.OwnerID, r.Pattern, r.Category).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context, ownerID uuid.UUID) ([]category.Rule, error) {
	query := `
		SELECT id, owner_id, pattern, category, created_at
		FROM category_rules
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing category rules: %w", err)
	}
	defer rows.Close()

	var rules []category.Rule

	for rows.Next() {
		var r category.Rule
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category rule: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rules: %w", err)
	}

	return rules, nil
}
