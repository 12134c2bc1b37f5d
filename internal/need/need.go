package need

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

var ErrNotFound = errors.New("need not found")

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Need is something the owner is saving towards. It never touches pocket balances.
type Need struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Priority  Priority
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *Need) Ref() notification.NeedRef {
	return notification.NeedRef{
		ID:       n.ID,
		Title:    n.Title,
		Priority: string(n.Priority),
		Amount:   n.Amount,
	}
}
