package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

var ErrNotFound = errors.New("entry not found")

// Kind tags an Entry as an expense or an income record.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Effect is the change an entry of the given amount makes to its pocket's balance.
func (k Kind) Effect(amount decimal.Decimal) decimal.Decimal {
	if k == KindExpense {
		return amount.Neg()
	}

	return amount
}

// Resource names the kind in caller-facing errors.
func (k Kind) Resource() string {
	if k == KindExpense {
		return "Expense"
	}

	return "Income"
}

// Entry is an expense or income record. Its amount is always positive; Kind decides
// which way it moves the pocket balance.
type Entry struct {
	ID          uuid.UUID
	Kind        Kind
	PocketID    uuid.UUID
	OwnerID     uuid.UUID
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Entry) ref(pocketName string) notification.EntryRef {
	return notification.EntryRef{
		ID:          e.ID,
		PocketID:    e.PocketID,
		PocketName:  pocketName,
		Description: e.Description,
		Amount:      e.Amount,
	}
}
