package pocket_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

type fakeRepo struct {
	pockets map[uuid.UUID]*pocket.Pocket
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{pockets: map[uuid.UUID]*pocket.Pocket{}}
}

func (r *fakeRepo) CreatePocket(_ context.Context, p *pocket.Pocket) error {
	if r.err != nil {
		return r.err
	}

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.pockets[p.ID] = &cp

	return nil
}

func (r *fakeRepo) GetPocket(_ context.Context, ownerID, id uuid.UUID) (*pocket.Pocket, error) {
	p, ok := r.pockets[id]
	if !ok || p.OwnerID != ownerID {
		return nil, pocket.ErrNotFound
	}

	cp := *p

	return &cp, nil
}

func (r *fakeRepo) ListPockets(_ context.Context, ownerID uuid.UUID) ([]*pocket.Pocket, error) {
	var out []*pocket.Pocket

	for _, p := range r.pockets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeRepo) UpdatePocket(
	_ context.Context,
	ownerID, id uuid.UUID,
	params pocket.UpdateParams,
) (*pocket.Pocket, *pocket.Pocket, error) {
	p, ok := r.pockets[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil, pocket.ErrNotFound
	}

	before := *p
	p.Apply(params)
	after := *p

	return &before, &after, nil
}

type recorder struct {
	events []notification.Event
}

func (r *recorder) Emit(ev notification.Event) { r.events = append(r.events, ev) }

func (r *recorder) types() []notification.Type {
	var out []notification.Type
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}

	return out
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		params    pocket.CreateParams
		repoErr   error
		wantErr   bool
		wantValid bool
	}{
		{
			name:   "Success",
			params: pocket.CreateParams{Name: " Main ", Balance: decimal.NewFromInt(1000)},
		},
		{
			name:      "MissingName",
			params:    pocket.CreateParams{Name: "   "},
			wantErr:   true,
			wantValid: true,
		},
		{
			name:      "SubCentBalance",
			params:    pocket.CreateParams{Name: "Main", Balance: decimal.RequireFromString("10.005")},
			wantErr:   true,
			wantValid: true,
		},
		{
			name:      "BalanceOverflow",
			params:    pocket.CreateParams{Name: "Main", Balance: decimal.New(-1, 12)},
			wantErr:   true,
			wantValid: true,
		},
		{
			name:    "RepoError",
			params:  pocket.CreateParams{Name: "Main"},
			repoErr: errors.New("db error"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.err = tt.repoErr
			rec := &recorder{}

			svc := pocket.NewService(repo, rec)
			got, err := svc.Create(context.Background(), uuid.New(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantValid, apperr.IsValidation(err))
				assert.Empty(t, rec.events)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Main", got.Name)
			assert.True(t, got.Balance.Equal(got.InitialBalance))
			assert.Equal(t, pocket.BalanceComputed, got.BalanceSource)
			assert.Equal(t, []notification.Type{notification.TypePocketCreated}, rec.types())
		})
	}
}

func TestService_Update(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name       string
		start      int64
		balance    *decimal.Decimal
		wantSource pocket.BalanceSource
		wantEvents []notification.Type
	}{
		{
			name:       "RenameOnly",
			start:      50,
			wantSource: pocket.BalanceComputed,
		},
		{
			name:       "SameBalanceIsNotOverride",
			start:      50,
			balance:    new(decimal.NewFromInt(50)),
			wantSource: pocket.BalanceComputed,
		},
		{
			name:       "OverrideBelowZero",
			start:      50,
			balance:    new(decimal.NewFromInt(-20)),
			wantSource: pocket.BalanceManual,
			wantEvents: []notification.Type{notification.TypePocketBalanceNegative},
		},
		{
			name:       "OverrideBackAboveZero",
			start:      -5,
			balance:    new(decimal.NewFromInt(10)),
			wantSource: pocket.BalanceManual,
			wantEvents: []notification.Type{notification.TypePocketBalancePositive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			rec := &recorder{}
			svc := pocket.NewService(repo, rec)

			p := &pocket.Pocket{OwnerID: owner, Name: "Main", Balance: decimal.NewFromInt(tt.start), BalanceSource: pocket.BalanceComputed}
			require.NoError(t, repo.CreatePocket(context.Background(), p))

			got, err := svc.Update(context.Background(), owner, p.ID, pocket.UpdateParams{Name: "Renamed", Balance: tt.balance})
			require.NoError(t, err)

			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, tt.wantSource, got.BalanceSource)
			assert.Equal(t, tt.wantEvents, rec.types())
		})
	}
}

func TestService_ForeignPocketIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := pocket.NewService(repo, &recorder{})

	p, err := svc.Create(context.Background(), uuid.New(), pocket.CreateParams{Name: "Mine"})
	require.NoError(t, err)

	intruder := uuid.New()

	_, err = svc.Get(context.Background(), intruder, p.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.Update(context.Background(), intruder, p.ID, pocket.UpdateParams{Name: "Stolen"})
	assert.True(t, apperr.IsNotFound(err))
	assert.EqualError(t, err, "Pocket not found")
}
