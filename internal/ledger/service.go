package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
	"github.com/MrJamesThe3rd/pocketly/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)

	GetEntry(ctx context.Context, kind Kind, ownerID, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
}

// Tx is one store transaction. Every balance mutation locks the pocket row before
// touching its entries, so mutations on one pocket serialize and mutations on
// different pockets never wait on each other.
type Tx interface {
	LockPocket(ctx context.Context, ownerID, pocketID uuid.UUID) (*pocket.Pocket, error)
	LockEntry(ctx context.Context, kind Kind, ownerID, id uuid.UUID) (*Entry, *pocket.Pocket, error)

	InsertEntry(ctx context.Context, e *Entry) error
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, kind Kind, id uuid.UUID) error
	SetBalance(ctx context.Context, pocketID uuid.UUID, balance decimal.Decimal) error

	DeletePocketEntries(ctx context.Context, pocketID uuid.UUID) (int64, error)
	DeletePocket(ctx context.Context, pocketID uuid.UUID) error

	Commit() error
	Rollback() error
}

type Notifier interface {
	Emit(ev notification.Event)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type CreateParams struct {
	PocketID    uuid.UUID       `json:"pocketId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Description string          `json:"description" validate:"required,max=255"`
}

type UpdateParams struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Description string          `json:"description" validate:"required,max=255"`
}

type ListFilter struct {
	OwnerID  uuid.UUID
	Kinds    []Kind
	PocketID *uuid.UUID
}

func (s *Service) CreateExpense(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Entry, error) {
	return s.Create(ctx, ownerID, KindExpense, params)
}

func (s *Service) UpdateExpense(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Entry, error) {
	return s.Update(ctx, ownerID, KindExpense, id, params)
}

func (s *Service) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.Delete(ctx, ownerID, KindExpense, id)
}

func (s *Service) CreateIncome(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Entry, error) {
	return s.Create(ctx, ownerID, KindIncome, params)
}

func (s *Service) UpdateIncome(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Entry, error) {
	return s.Update(ctx, ownerID, KindIncome, id, params)
}

func (s *Service) DeleteIncome(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.Delete(ctx, ownerID, KindIncome, id)
}

// Create records an entry and moves its pocket's balance in the same transaction.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, kind Kind, params CreateParams) (*Entry, error) {
	params.Description = strings.TrimSpace(params.Description)
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	var (
		entry      *Entry
		p          *pocket.Pocket
		oldBalance decimal.Decimal
	)

	err := s.inTx(ctx, "create "+string(kind), kind, func(tx Tx) error {
		var err error

		p, err = tx.LockPocket(ctx, ownerID, params.PocketID)
		if err != nil {
			return err
		}

		entry = &Entry{
			Kind:        kind,
			PocketID:    p.ID,
			OwnerID:     ownerID,
			Amount:      params.Amount,
			Description: params.Description,
		}
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return err
		}

		oldBalance = p.Balance
		p.Balance = p.Balance.Add(kind.Effect(entry.Amount))

		return setBalance(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}

	s.notifyEntry(notification.ActionCreated, ownerID, entry, p, oldBalance)

	return entry, nil
}

// Update rewrites an entry and shifts the pocket balance by the amount difference.
func (s *Service) Update(ctx context.Context, ownerID uuid.UUID, kind Kind, id uuid.UUID, params UpdateParams) (*Entry, error) {
	params.Description = strings.TrimSpace(params.Description)
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	var (
		entry      *Entry
		p          *pocket.Pocket
		oldBalance decimal.Decimal
	)

	err := s.inTx(ctx, "update "+string(kind), kind, func(tx Tx) error {
		var err error

		entry, p, err = tx.LockEntry(ctx, kind, ownerID, id)
		if err != nil {
			return err
		}

		delta := params.Amount.Sub(entry.Amount)
		entry.Amount = params.Amount
		entry.Description = params.Description

		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}

		oldBalance = p.Balance
		p.Balance = p.Balance.Add(kind.Effect(delta))

		return setBalance(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}

	s.notifyEntry(notification.ActionUpdated, ownerID, entry, p, oldBalance)

	return entry, nil
}

// Delete removes an entry and reverses its effect on the pocket balance.
func (s *Service) Delete(ctx context.Context, ownerID uuid.UUID, kind Kind, id uuid.UUID) error {
	var (
		entry      *Entry
		p          *pocket.Pocket
		oldBalance decimal.Decimal
	)

	err := s.inTx(ctx, "delete "+string(kind), kind, func(tx Tx) error {
		var err error

		entry, p, err = tx.LockEntry(ctx, kind, ownerID, id)
		if err != nil {
			return err
		}

		oldBalance = p.Balance
		p.Balance = p.Balance.Sub(kind.Effect(entry.Amount))

		if err := setBalance(ctx, tx, p); err != nil {
			return err
		}

		return tx.DeleteEntry(ctx, kind, entry.ID)
	})
	if err != nil {
		return err
	}

	s.notifyEntry(notification.ActionDeleted, ownerID, entry, p, oldBalance)

	return nil
}

// DeletePocket removes a pocket together with all of its expense and income records.
func (s *Service) DeletePocket(ctx context.Context, ownerID, pocketID uuid.UUID) error {
	var p *pocket.Pocket

	err := s.inTx(ctx, "delete pocket", "", func(tx Tx) error {
		var err error

		p, err = tx.LockPocket(ctx, ownerID, pocketID)
		if err != nil {
			return err
		}

		if _, err := tx.DeletePocketEntries(ctx, p.ID); err != nil {
			return err
		}

		return tx.DeletePocket(ctx, p.ID)
	})
	if err != nil {
		return err
	}

	s.notifier.Emit(notification.PocketDeleted(ownerID, p.Ref()))

	return nil
}

func (s *Service) Get(ctx context.Context, ownerID uuid.UUID, kind Kind, id uuid.UUID) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, kind, ownerID, id)
	if err != nil {
		return nil, notFound(kind, err)
	}

	return e, nil
}

// List returns entries of one kind, newest first, optionally limited to a pocket.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, kind Kind, pocketID *uuid.UUID) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, ListFilter{OwnerID: ownerID, Kinds: []Kind{kind}, PocketID: pocketID})
}

// Activity returns expenses and income interleaved, newest first.
func (s *Service) Activity(ctx context.Context, ownerID uuid.UUID, pocketID *uuid.UUID) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, ListFilter{
		OwnerID:  ownerID,
		Kinds:    []Kind{KindExpense, KindIncome},
		PocketID: pocketID,
	})
}

// inTx runs fn in a transaction. Any failure rolls the whole transaction back and
// reaches the caller as NotFound or TransactionAbortError; nothing is retried.
func (s *Service) inTx(ctx context.Context, op string, kind Kind, fn func(tx Tx) error) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return apperr.Aborted(op, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return apperr.Aborted(op, notFound(kind, err))
	}

	if err := tx.Commit(); err != nil {
		return apperr.Aborted(op, fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

// setBalance refuses a balance the pocket column cannot hold, failing the transaction.
func setBalance(ctx context.Context, tx Tx, p *pocket.Pocket) error {
	if !validate.Money(p.Balance) {
		return apperr.Validation("Pocket balance must stay below %s", validate.MaxMoney)
	}

	return tx.SetBalance(ctx, p.ID, p.Balance)
}

func (s *Service) notifyEntry(action notification.Action, ownerID uuid.UUID, e *Entry, p *pocket.Pocket, oldBalance decimal.Decimal) {
	ref := e.ref(p.Name)
	if e.Kind == KindExpense {
		s.notifier.Emit(notification.Expense(action, ownerID, ref))
	} else {
		s.notifier.Emit(notification.Income(action, ownerID, ref))
	}

	if ev, ok := notification.BalanceCrossed(ownerID, p.Ref(), oldBalance); ok {
		s.notifier.Emit(ev)
	}
}

func notFound(kind Kind, err error) error {
	switch {
	case errors.Is(err, pocket.ErrNotFound):
		return apperr.NotFound("Pocket")
	case errors.Is(err, ErrNotFound) && kind.Valid():
		return apperr.NotFound(kind.Resource())
	default:
		return err
	}
}
