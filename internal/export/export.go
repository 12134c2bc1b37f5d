// Package export turns an owner's activity into a spreadsheet-friendly CSV and a
// plain-text summary suitable for pasting into an email.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/category"
	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

type Activity interface {
	Activity(ctx context.Context, ownerID uuid.UUID, pocketID *uuid.UUID) ([]*ledger.Entry, error)
}

type Pockets interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*pocket.Pocket, error)
}

type Categories interface {
	Matcher(ctx context.Context, ownerID uuid.UUID) (*category.Matcher, error)
}

// Filter narrows the export. From and To are inclusive calendar days; nil means open.
type Filter struct {
	PocketID *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// Row is one exported entry.
type Row struct {
	Entry    *ledger.Entry
	Pocket   string
	Category string
}

type Service struct {
	activity   Activity
	pockets    Pockets
	categories Categories
	loc        *time.Location
}

func NewService(activity Activity, pockets Pockets, categories Categories, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}

	return &Service{activity: activity, pockets: pockets, categories: categories, loc: loc}
}

// Export returns the owner's entries matching filter, newest first.
func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]Row, error) {
	entries, err := s.activity.Activity(ctx, ownerID, filter.PocketID)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}

	pockets, err := s.pockets.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing pockets: %w", err)
	}

	names := make(map[uuid.UUID]string, len(pockets))
	for _, p := range pockets {
		names[p.ID] = p.Name
	}

	m, err := s.categories.Matcher(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(entries))

	for _, e := range entries {
		if !s.within(e.CreatedAt, filter) {
			continue
		}

		row := Row{Entry: e, Pocket: names[e.PocketID]}
		if e.Kind == ledger.KindExpense {
			row.Category = m.Categorize(e.Description)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (s *Service) within(t time.Time, f Filter) bool {
	y, m, d := t.In(s.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if f.From != nil && day.Before(utcDay(*f.From)) {
		return false
	}

	if f.To != nil && day.After(utcDay(*f.To)) {
		return false
	}

	return true
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var csvHeader = []string{"Date", "Type", "Pocket", "Description", "Category", "Amount"}

// WriteCSV writes rows with signed amounts: expenses negative, income positive.
func (s *Service) WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		e := r.Entry

		record := []string{
			e.CreatedAt.In(s.loc).Format(time.DateOnly),
			string(e.Kind),
			r.Pocket,
			e.Description,
			r.Category,
			e.Kind.Effect(e.Amount).StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summary renders one line per row followed by the totals.
func (s *Service) Summary(rows []Row) string {
	var (
		sb       strings.Builder
		expenses = decimal.Zero
		income   = decimal.Zero
	)

	for _, r := range rows {
		e := r.Entry

		sign := "-"
		if e.Kind == ledger.KindIncome {
			sign = "+"
			income = income.Add(e.Amount)
		} else {
			expenses = expenses.Add(e.Amount)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n",
			e.CreatedAt.In(s.loc).Format(time.DateOnly), e.Description, sign, notification.FormatAmount(e.Amount), r.Pocket)
	}

	fmt.Fprintf(&sb, "\nTotal income: %s\nTotal expenses: %s\nNet: %s\n",
		notification.FormatAmount(income), notification.FormatAmount(expenses), signed(income.Sub(expenses)))

	return sb.String()
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + notification.FormatAmount(d.Abs())
	}

	return notification.FormatAmount(d)
}
