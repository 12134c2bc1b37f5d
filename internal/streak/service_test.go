package streak_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/streak"
)

type fakeRepo struct {
	states  map[uuid.UUID]streak.State
	saves   int
	saveErr error
}

func (r *fakeRepo) GetStreak(_ context.Context, userID uuid.UUID) (*streak.State, error) {
	st, ok := r.states[userID]
	if !ok {
		return nil, streak.ErrNotFound
	}

	return &st, nil
}

func (r *fakeRepo) SaveStreak(_ context.Context, userID uuid.UUID, st streak.State) error {
	if r.saveErr != nil {
		return r.saveErr
	}

	// stored dates come back as UTC midnight, like a DATE column
	if st.LastDate != nil {
		y, m, d := st.LastDate.Date()
		st.LastDate = new(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}

	r.saves++
	r.states[userID] = st

	return nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestService_Trigger(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{states: map[uuid.UUID]streak.State{}}
	c := &clock{now: at(10, 23, 59)}
	svc := streak.NewService(repo, lagos, streak.WithClock(c.Now))
	user := uuid.New()

	got, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, streak.State{}, got)

	res, err := svc.Trigger(ctx, user)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 1, res.Current)

	res, err = svc.Trigger(ctx, user)
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 1, repo.saves)

	c.now = at(11, 0, 1)
	res, err = svc.Trigger(ctx, user)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 2, res.Longest)
	assert.True(t, res.LastDate.Equal(*dayPtr(11)))

	c.now = at(13, 12, 0)
	res, err = svc.Trigger(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 2, res.Longest)
	assert.True(t, res.LastDate.Equal(*dayPtr(13)))

	stored, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, lagos, stored.LastDate.Location())
}

func TestService_TriggerUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	repo := &fakeRepo{states: map[uuid.UUID]streak.State{
		user: {Current: 3, Longest: 3, LastDate: new(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))},
	}}

	// 23:30 UTC on the 10th is already the 11th in Lagos
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)
	svc := streak.NewService(repo, lagos, streak.WithClock(func() time.Time { return now }))

	res, err := svc.Trigger(ctx, user)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 4, res.Current)
}

func TestService_TriggerSaveFails(t *testing.T) {
	repo := &fakeRepo{states: map[uuid.UUID]streak.State{}, saveErr: errors.New("db down")}
	svc := streak.NewService(repo, lagos)

	_, err := svc.Trigger(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
}
