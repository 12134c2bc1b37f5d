package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
	"github.com/MrJamesThe3rd/pocketly/internal/validate"
)

// MaxImportLines bounds a single statement import.
const MaxImportLines = 1000

// ImportLine is one parsed statement row. Date becomes the entry's createdAt.
type ImportLine struct {
	Kind        Kind
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

type ImportResult struct {
	Pocket   *pocket.Pocket
	Entries  []*Entry
	Expenses int
	Income   int
}

// Import records every line against one pocket in a single transaction: the pocket is
// locked once, all entries are inserted and the balance is written once with the net
// effect. Either every line lands or none does.
//
// One statement_imported notification replaces the per-entry ones, and the balance
// crossing check compares the balance before the import with the balance after it.
func (s *Service) Import(ctx context.Context, ownerID, pocketID uuid.UUID, lines []ImportLine) (*ImportResult, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("Statement has no transactions")
	}

	if len(lines) > MaxImportLines {
		return nil, apperr.Validation("Statement has more than %d transactions", MaxImportLines)
	}

	for i := range lines {
		lines[i].Description = strings.TrimSpace(lines[i].Description)

		if err := checkLine(i, lines[i]); err != nil {
			return nil, err
		}
	}

	var (
		res        = &ImportResult{Entries: make([]*Entry, 0, len(lines))}
		oldBalance decimal.Decimal
	)

	err := s.inTx(ctx, "import statement", "", func(tx Tx) error {
		p, err := tx.LockPocket(ctx, ownerID, pocketID)
		if err != nil {
			return err
		}

		oldBalance = p.Balance

		for _, l := range lines {
			e := &Entry{
				Kind:        l.Kind,
				PocketID:    p.ID,
				OwnerID:     ownerID,
				Amount:      l.Amount,
				Description: l.Description,
				CreatedAt:   l.Date,
			}
			if err := tx.InsertEntry(ctx, e); err != nil {
				return err
			}

			p.Balance = p.Balance.Add(l.Kind.Effect(l.Amount))
			res.Entries = append(res.Entries, e)

			if l.Kind == KindExpense {
				res.Expenses++
			} else {
				res.Income++
			}
		}

		res.Pocket = p

		return setBalance(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}

	ref := res.Pocket.Ref()
	s.notifier.Emit(notification.StatementImported(ownerID, ref, res.Expenses, res.Income))

	if ev, ok := notification.BalanceCrossed(ownerID, ref, oldBalance); ok {
		s.notifier.Emit(ev)
	}

	return res, nil
}

func checkLine(i int, l ImportLine) error {
	row := i + 1

	switch {
	case !l.Kind.Valid():
		return apperr.Validation("Line %d: unknown entry type %q", row, l.Kind)
	case !l.Amount.IsPositive():
		return apperr.Validation("Line %d: amount must be greater than 0", row)
	case !validate.Money(l.Amount):
		return apperr.Validation("Line %d: amount must have at most 2 decimal places and be below %s", row, validate.MaxMoney)
	case l.Description == "":
		return apperr.Validation("Line %d: description is required", row)
	case len(l.Description) > 255:
		return apperr.Validation("Line %d: description must be at most 255 characters", row)
	}

	return nil
}
