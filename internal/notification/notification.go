package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

// Type identifies what happened. Values are stable and exposed over the API.
type Type string

const (
	TypePocketCreated         Type = "pocket_created"
	TypePocketDeleted         Type = "pocket_deleted"
	TypePocketBalanceNegative Type = "pocket_balance_negative"
	TypePocketBalancePositive Type = "pocket_balance_positive"
	TypeExpenseCreated        Type = "expense_created"
	TypeExpenseUpdated        Type = "expense_updated"
	TypeExpenseDeleted        Type = "expense_deleted"
	TypeIncomeCreated         Type = "income_created"
	TypeIncomeUpdated         Type = "income_updated"
	TypeIncomeDeleted         Type = "income_deleted"
	TypeNeedCreated           Type = "need_created"
	TypeNeedUpdated           Type = "need_updated"
	TypeNeedDeleted           Type = "need_deleted"
	TypeStatementImported     Type = "statement_imported"
)

func (t Type) Valid() bool {
	switch t {
	case TypePocketCreated, TypePocketDeleted, TypePocketBalanceNegative, TypePocketBalancePositive,
		TypeExpenseCreated, TypeExpenseUpdated, TypeExpenseDeleted,
		TypeIncomeCreated, TypeIncomeUpdated, TypeIncomeDeleted,
		TypeNeedCreated, TypeNeedUpdated, TypeNeedDeleted, TypeStatementImported:
		return true
	}

	return false
}

// Metadata carries references to the entities behind a notification (pocketId, expenseId, amount...).
type Metadata map[string]any

// Notification is an append-only audit record; only Read may change after creation.
type Notification struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Type      Type
	Title     string
	Message   string
	Read      bool
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}
