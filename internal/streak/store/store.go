package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/streak"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetStreak(ctx context.Context, userID uuid.UUID) (*streak.State, error) {
	query := `SELECT current_streak, longest_streak, last_streak_date FROM users WHERE id = $1`

	var (
		st   streak.State
		last sql.NullTime
	)

	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&st.Current, &st.Longest, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, streak.ErrNotFound
		}

		return nil, fmt.Errorf("getting streak: %w", err)
	}

	if last.Valid {
		st.LastDate = &last.Time
	}

	return &st, nil
}

func (s *Store) SaveStreak(ctx context.Context, userID uuid.UUID, st streak.State) error {
	query := `
		INSERT INTO users (id, current_streak, longest_streak, last_streak_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    last_streak_date = EXCLUDED.last_streak_date,
		    updated_at = NOW()
	`

	var last any
	if st.LastDate != nil {
		last = st.LastDate.Format(time.DateOnly)
	}

	if _, err := s.db.ExecContext(ctx, query, userID, st.Current, st.Longest, last); err != nil {
		return fmt.Errorf("saving streak: %w", err)
	}

	return nil
}
