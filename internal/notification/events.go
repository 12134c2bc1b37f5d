package notification

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a notification waiting to be written by the Emitter.
type Event struct {
	OwnerID  uuid.UUID
	Type     Type
	Title    string
	Message  string
	Metadata Metadata
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// PocketRef is the slice of a pocket an event needs.
type PocketRef struct {
	ID      uuid.UUID
	Name    string
	Balance decimal.Decimal
}

// EntryRef describes an expense or income record and the pocket it belongs to.
type EntryRef struct {
	ID          uuid.UUID
	PocketID    uuid.UUID
	PocketName  string
	Description string
	Amount      decimal.Decimal
}

type NeedRef struct {
	ID       uuid.UUID
	Title    string
	Priority string
	Amount   decimal.Decimal
}

func PocketCreated(ownerID uuid.UUID, p PocketRef) Event {
	return Event{
		OwnerID: ownerID,
		Type:    TypePocketCreated,
		Title:   "Pocket Created",
		Message: fmt.Sprintf("You created a new pocket %q with balance %s", p.Name, FormatAmount(p.Balance)),
		Metadata: Metadata{
			"pocketId": p.ID.String(),
			"amount":   p.Balance,
		},
	}
}

func PocketDeleted(ownerID uuid.UUID, p PocketRef) Event {
	return Event{
		OwnerID:  ownerID,
		Type:     TypePocketDeleted,
		Title:    "Pocket Deleted",
		Message:  fmt.Sprintf("You deleted the pocket %q", p.Name),
		Metadata: Metadata{"pocketId": p.ID.String()},
	}
}

// Crossing reports which alert, if any, a balance move from oldBalance to newBalance raises.
// Zero counts as non-negative, so only sign changes across zero are reported.
func Crossing(oldBalance, newBalance decimal.Decimal) (Type, bool) {
	switch {
	case !oldBalance.IsNegative() && newBalance.IsNegative():
		return TypePocketBalanceNegative, true
	case oldBalance.IsNegative() && !newBalance.IsNegative():
		return TypePocketBalancePositive, true
	default:
		return "", false
	}
}

// BalanceCrossed builds the crossing alert for p, whose balance moved from oldBalance to p.Balance.
func BalanceCrossed(ownerID uuid.UUID, p PocketRef, oldBalance decimal.Decimal) (Event, bool) {
	t, ok := Crossing(oldBalance, p.Balance)
	if !ok {
		return Event{}, false
	}

	ev := Event{
		OwnerID: ownerID,
		Type:    t,
		Metadata: Metadata{
			"pocketId": p.ID.String(),
			"amount":   p.Balance,
		},
	}

	if t == TypePocketBalanceNegative {
		ev.Title = "Low Balance Alert"
		ev.Message = fmt.Sprintf("Your pocket %q balance is now negative: %s", p.Name, FormatAmount(p.Balance))
	} else {
		ev.Title = "Balance Restored"
		ev.Message = fmt.Sprintf("Your pocket %q balance is now positive: %s", p.Name, FormatAmount(p.Balance))
	}

	return ev, true
}

func Expense(action Action, ownerID uuid.UUID, e EntryRef) Event {
	return entryEvent("expense", action, ownerID, e)
}

func Income(action Action, ownerID uuid.UUID, e EntryRef) Event {
	return entryEvent("income", action, ownerID, e)
}

func entryEvent(kind string, action Action, ownerID uuid.UUID, e EntryRef) Event {
	amount := FormatAmount(e.Amount)
	label := kind
	if kind == "income" {
		label = "income record"
	}

	var title, msg string

	switch action {
	case ActionCreated:
		title = capitalize(kind) + " Recorded"
		msg = fmt.Sprintf("You recorded an %s of %s for %q in %q", kind, amount, e.Description, e.PocketName)
	case ActionUpdated:
		title = capitalize(kind) + " Updated"
		msg = fmt.Sprintf("You updated an %s to %s for %q in %q", label, amount, e.Description, e.PocketName)
	case ActionDeleted:
		title = capitalize(kind) + " Deleted"
		msg = fmt.Sprintf("You deleted an %s of %s for %q from %q", kind, amount, e.Description, e.PocketName)
	}

	return Event{
		OwnerID: ownerID,
		Type:    Type(kind + "_" + string(action)),
		Title:   title,
		Message: msg,
		Metadata: Metadata{
			"pocketId":    e.PocketID.String(),
			kind + "Id":   e.ID.String(),
			"amount":      e.Amount,
			"description": e.Description,
		},
	}
}

func Need(action Action, ownerID uuid.UUID, n NeedRef) Event {
	amount := FormatAmount(n.Amount)

	var title, msg string

	switch action {
	case ActionCreated:
		title = "Need Created"
		msg = fmt.Sprintf("You added a new need: %q (%s priority) - %s", n.Title, n.Priority, amount)
	case ActionUpdated:
		title = "Need Updated"
		msg = fmt.Sprintf("You updated a need: %q (%s priority) - %s", n.Title, n.Priority, amount)
	case ActionDeleted:
		title = "Need Deleted"
		msg = fmt.Sprintf("You deleted a need: %q - %s", n.Title, amount)
	}

	return Event{
		OwnerID: ownerID,
		Type:    Type("need_" + string(action)),
		Title:   title,
		Message: msg,
		Metadata: Metadata{
			"needId": n.ID.String(),
			"amount": n.Amount,
		},
	}
}

// StatementImported summarises a bank statement import into one notification instead
// of one per imported line.
func StatementImported(ownerID uuid.UUID, p PocketRef, expenses, income int) Event {
	return Event{
		OwnerID: ownerID,
		Type:    TypeStatementImported,
		Title:   "Statement Imported",
		Message: fmt.Sprintf("You imported %d expenses and %d income records into %q. New balance: %s",
			expenses, income, p.Name, FormatAmount(p.Balance)),
		Metadata: Metadata{
			"pocketId": p.ID.String(),
			"expenses": expenses,
			"income":   income,
			"amount":   p.Balance,
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return string(s[0]-'a'+'A') + s[1:]
}
