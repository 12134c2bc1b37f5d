package pocket

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

var ErrNotFound = errors.New("pocket not found")

// BalanceSource tells whether a balance is still the ledger sum or was set by hand.
type BalanceSource string

const (
	// BalanceComputed means Balance == InitialBalance + Σincome − Σexpense.
	BalanceComputed BalanceSource = "computed"
	// BalanceManual means the owner overrode the balance; the ledger sum no longer applies.
	BalanceManual BalanceSource = "manual"
)

// Pocket is a named sub-account with a running balance.
type Pocket struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Balance        decimal.Decimal
	InitialBalance decimal.Decimal
	BalanceSource  BalanceSource
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Apply renames the pocket and, when params carries a different balance, overrides it.
func (p *Pocket) Apply(params UpdateParams) {
	p.Name = params.Name

	if params.Balance != nil && !params.Balance.Equal(p.Balance) {
		p.Balance = *params.Balance
		p.BalanceSource = BalanceManual
	}
}

func (p *Pocket) Ref() notification.PocketRef {
	return notification.PocketRef{ID: p.ID, Name: p.Name, Balance: p.Balance}
}
