package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetStreak(ctx context.Context, userID uuid.UUID) (*State, error)
	// SaveStreak creates the user row on first use.
	SaveStreak(ctx context.Context, userID uuid.UUID, s State) error
}

type Result struct {
	State
	Updated bool
}

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService counts days in loc; a nil loc means server-local time.
func NewService(repo Repository, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}

	s := &Service{repo: repo, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the stored streak, or the zero state for a user who never triggered one.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (State, error) {
	st, err := s.repo.GetStreak(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return State{}, nil
		}

		return State{}, fmt.Errorf("getting streak: %w", err)
	}

	return s.inLocation(*st), nil
}

// Trigger records that the user opened the app now. Concurrent triggers for one user
// are not serialized; the last write wins.
func (s *Service) Trigger(ctx context.Context, userID uuid.UUID) (Result, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	next, updated := Advance(current, s.now().In(s.loc))
	if !updated {
		return Result{State: current}, nil
	}

	if err := s.repo.SaveStreak(ctx, userID, next); err != nil {
		return Result{}, fmt.Errorf("saving streak: %w", err)
	}

	return Result{State: next, Updated: true}, nil
}

// inLocation re-anchors a stored date, which carries no zone, to midnight in s.loc.
func (s *Service) inLocation(st State) State {
	if st.LastDate != nil {
		y, m, d := st.LastDate.Date()
		st.LastDate = new(time.Date(y, m, d, 0, 0, 0, 0, s.loc))
	}

	return st
}
