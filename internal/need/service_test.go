package need_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/need"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type fakeRepo struct {
	needs map[uuid.UUID]need.Need
}

func (r *fakeRepo) CreateNeed(_ context.Context, n *need.Need) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.needs[n.ID] = *n

	return nil
}

func (r *fakeRepo) GetNeed(_ context.Context, ownerID, id uuid.UUID) (*need.Need, error) {
	n, ok := r.needs[id]
	if !ok || n.OwnerID != ownerID {
		return nil, need.ErrNotFound
	}

	return &n, nil
}

func (r *fakeRepo) ListNeeds(_ context.Context, ownerID uuid.UUID) ([]*need.Need, error) {
	var out []*need.Need

	for _, n := range r.needs {
		if n.OwnerID == ownerID {
			out = append(out, &n)
		}
	}

	return out, nil
}

func (r *fakeRepo) UpdateNeed(_ context.Context, n *need.Need) error {
	if cur, ok := r.needs[n.ID]; !ok || cur.OwnerID != n.OwnerID {
		return need.ErrNotFound
	}

	n.UpdatedAt = time.Now()
	r.needs[n.ID] = *n

	return nil
}

func (r *fakeRepo) DeleteNeed(_ context.Context, ownerID, id uuid.UUID) (*need.Need, error) {
	n, ok := r.needs[id]
	if !ok || n.OwnerID != ownerID {
		return nil, need.ErrNotFound
	}

	delete(r.needs, id)

	return &n, nil
}

type recorder struct {
	events []notification.Event
}

func (r *recorder) Emit(ev notification.Event) { r.events = append(r.events, ev) }

func setup() (*need.Service, *fakeRepo, *recorder) {
	repo := &fakeRepo{needs: map[uuid.UUID]need.Need{}}
	rec := &recorder{}

	return need.NewService(repo, rec), repo, rec
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  need.Params
		wantErr string
	}{
		{
			name:    "MissingTitle",
			params:  need.Params{Title: "  ", Amount: decimal.NewFromInt(10), Priority: need.PriorityHigh},
			wantErr: "Title is required",
		},
		{
			name:    "ZeroAmount",
			params:  need.Params{Title: "Laptop", Priority: need.PriorityHigh},
			wantErr: "Amount must be greater than 0",
		},
		{
			name:    "SubCentAmount",
			params:  need.Params{Title: "Laptop", Amount: decimal.RequireFromString("0.001"), Priority: need.PriorityHigh},
			wantErr: "Amount must have at most 2 decimal places and be below 1000000000000",
		},
		{
			name:    "UnknownPriority",
			params:  need.Params{Title: "Laptop", Amount: decimal.NewFromInt(10), Priority: "urgent"},
			wantErr: "Priority must be high, medium, or low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, rec := setup()

			_, err := svc.Create(context.Background(), uuid.New(), tt.params)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.EqualError(t, err, tt.wantErr)
			assert.Empty(t, repo.needs)
			assert.Empty(t, rec.events)
		})
	}
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setup()
	owner := uuid.New()

	n, err := svc.Create(ctx, owner, need.Params{Title: " Laptop ", Amount: decimal.NewFromInt(250000)})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", n.Title)
	assert.Equal(t, need.PriorityMedium, n.Priority)
	assert.False(t, n.Completed)

	updated, err := svc.Update(ctx, owner, n.ID, need.Params{
		Title:     "Laptop",
		Amount:    decimal.NewFromInt(300000),
		Priority:  need.PriorityHigh,
		Completed: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, need.PriorityHigh, updated.Priority)

	require.NoError(t, svc.Delete(ctx, owner, n.ID))

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.Len(t, rec.events, 3)
	assert.Equal(t, notification.TypeNeedCreated, rec.events[0].Type)
	assert.Equal(t, notification.TypeNeedUpdated, rec.events[1].Type)
	assert.Equal(t, `You updated a need: "Laptop" (high priority) - ₦300,000.00`, rec.events[1].Message)
	assert.Equal(t, notification.TypeNeedDeleted, rec.events[2].Type)
}

func TestService_ForeignNeedIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setup()
	alice, bob := uuid.New(), uuid.New()

	n, err := svc.Create(ctx, alice, need.Params{Title: "Shoes", Amount: decimal.NewFromInt(50), Priority: need.PriorityLow})
	require.NoError(t, err)
	rec.events = nil

	_, err = svc.Get(ctx, bob, n.ID)
	assert.EqualError(t, err, "Need not found")

	_, err = svc.Update(ctx, bob, n.ID, need.Params{Title: "Mine now", Amount: decimal.NewFromInt(1), Priority: need.PriorityLow})
	assert.EqualError(t, err, "Need not found")

	assert.EqualError(t, svc.Delete(ctx, bob, n.ID), "Need not found")
	assert.Empty(t, rec.events)

	got, err := svc.Get(ctx, alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shoes", got.Title)
}
