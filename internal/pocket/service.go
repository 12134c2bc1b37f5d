package pocket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/validate"
)

type Repository interface {
	CreatePocket(ctx context.Context, p *Pocket) error
	GetPocket(ctx context.Context, ownerID, id uuid.UUID) (*Pocket, error)
	ListPockets(ctx context.Context, ownerID uuid.UUID) ([]*Pocket, error)
	// UpdatePocket locks the pocket, applies params and returns it as it was before and after.
	UpdatePocket(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (before, after *Pocket, err error)
}

type Notifier interface {
	Emit(ev notification.Event)
}

type CreateParams struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Balance decimal.Decimal `json:"balance" validate:"money"`
}

type UpdateParams struct {
	Name    string           `json:"name" validate:"required,max=100"`
	Balance *decimal.Decimal `json:"balance" validate:"omitempty,money"`
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Pocket, error) {
	params.Name = strings.TrimSpace(params.Name)
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	p := &Pocket{
		OwnerID:        ownerID,
		Name:           params.Name,
		Balance:        params.Balance,
		InitialBalance: params.Balance,
		BalanceSource:  BalanceComputed,
	}
	if err := s.repo.CreatePocket(ctx, p); err != nil {
		return nil, err
	}

	s.notifier.Emit(notification.PocketCreated(ownerID, p.Ref()))

	return p, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Pocket, error) {
	return s.repo.ListPockets(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Pocket, error) {
	p, err := s.repo.GetPocket(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err)
	}

	return p, nil
}

// Update renames a pocket and optionally overrides its balance. An override bypasses
// the ledger: the pocket is tagged BalanceManual and no reconciliation happens.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Pocket, error) {
	params.Name = strings.TrimSpace(params.Name)
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	before, after, err := s.repo.UpdatePocket(ctx, ownerID, id, params)
	if err != nil {
		return nil, notFound(err)
	}

	if ev, ok := notification.BalanceCrossed(ownerID, after.Ref(), before.Balance); ok {
		s.notifier.Emit(ev)
	}

	return after, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Pocket")
	}

	return fmt.Errorf("pocket: %w", err)
}
