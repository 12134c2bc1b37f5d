package need

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
	CreateNeed(ctx context.Context, n *Need) error
	GetNeed(ctx context.Context, ownerID, id uuid.UUID) (*Need, error)
	ListNeeds(ctx context.Context, ownerID uuid.UUID) ([]*Need, error)
	UpdateNeed(ctx context.Context, n *Need) error
	DeleteNeed(ctx context.Context, ownerID, id uuid.UUID) (*Need, error)
}

type Notifier interface {
	Emit(ev notification.Event)
}

type Params struct {
	Title     string          `json:"title" validate:"required,max=200"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Priority  Priority        `json:"priority" validate:"oneof=high medium low"`
	Completed bool            `json:"completed"`
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params Params) (*Need, error) {
	params, err := normalize(params)
	if err != nil {
		return nil, err
	}

	n := &Need{
		OwnerID:   ownerID,
		Title:     params.Title,
		Amount:    params.Amount,
		Priority:  params.Priority,
		Completed: params.Completed,
	}
	if err := s.repo.CreateNeed(ctx, n); err != nil {
		return nil, fmt.Errorf("creating need: %w", err)
	}

	s.notifier.Emit(notification.Need(notification.ActionCreated, ownerID, n.Ref()))

	return n, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Need, error) {
	return s.repo.ListNeeds(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Need, error) {
	n, err := s.repo.GetNeed(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err)
	}

	return n, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params Params) (*Need, error) {
	params, err := normalize(params)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.GetNeed(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err)
	}

	n.Title = params.Title
	n.Amount = params.Amount
	n.Priority = params.Priority
	n.Completed = params.Completed

	if err := s.repo.UpdateNeed(ctx, n); err != nil {
		return nil, notFound(err)
	}

	s.notifier.Emit(notification.Need(notification.ActionUpdated, ownerID, n.Ref()))

	return n, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	n, err := s.repo.DeleteNeed(ctx, ownerID, id)
	if err != nil {
		return notFound(err)
	}

	s.notifier.Emit(notification.Need(notification.ActionDeleted, ownerID, n.Ref()))

	return nil
}

// normalize trims the title and defaults an omitted priority to medium before validating.
func normalize(params Params) (Params, error) {
	params.Title = strings.TrimSpace(params.Title)
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}

	if err := validate.Struct(params); err != nil {
		return params, err
	}

	return params, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Need")
	}

	return fmt.Errorf("need: %w", err)
}
