// Package insights summarises an owner's spending and asks an optional language model
// for advice, falling back to locally computed sentences.
package insights

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

const (
	topCategories = 5
	maxAnomalies  = 5
	// trendThreshold is the month-over-month change, in percent, that counts as a trend.
	trendThreshold = 10.0
)

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Count    int
}

type MonthTotal struct {
	Month  string // e.g. "Mar 2026"
	Start  time.Time
	Amount decimal.Decimal
	Count  int
	// Change is the percent change from the previous month, nil for the first month
	// or when the previous month had no spending.
	Change *float64
}

type Anomaly struct {
	Description string
	Severity    Severity
}

type Analysis struct {
	TotalSpent        decimal.Decimal
	TotalExpenses     int
	AveragePerExpense decimal.Decimal
	AveragePerDay     decimal.Decimal
	TopCategories     []CategoryTotal
	SpendingTrend     Trend
	MonthlyBreakdown  []MonthTotal
	Anomalies         []Anomaly
	Insights          []string
	Recommendations   []string
}

// Analyze computes the deterministic part of an Analysis. expenses must be newest
// first; months are calendar months in loc.
func Analyze(expenses []*ledger.Entry, categorize func(description string) string, loc *time.Location) *Analysis {
	a := &Analysis{
		TotalSpent:        decimal.Zero,
		AveragePerExpense: decimal.Zero,
		AveragePerDay:     decimal.Zero,
		SpendingTrend:     TrendStable,
		TopCategories:     []CategoryTotal{},
		MonthlyBreakdown:  []MonthTotal{},
		Anomalies:         []Anomaly{},
	}

	if len(expenses) == 0 {
		return a
	}

	for _, e := range expenses {
		a.TotalSpent = a.TotalSpent.Add(e.Amount)
	}

	a.TotalExpenses = len(expenses)
	a.AveragePerExpense = a.TotalSpent.Div(decimal.NewFromInt(int64(a.TotalExpenses))).Round(2)

	newest, oldest := expenses[0].CreatedAt, expenses[len(expenses)-1].CreatedAt
	days := max(1, int64(math.Ceil(newest.Sub(oldest).Hours()/24)))
	a.AveragePerDay = a.TotalSpent.Div(decimal.NewFromInt(days)).Round(2)

	a.TopCategories = byCategory(expenses, categorize)
	a.MonthlyBreakdown = byMonth(expenses, loc)
	a.SpendingTrend = trend(a.MonthlyBreakdown)
	a.Anomalies = anomalies(expenses)

	return a
}

func byCategory(expenses []*ledger.Entry, categorize func(string) string) []CategoryTotal {
	totals := map[string]*CategoryTotal{}

	for _, e := range expenses {
		c := categorize(e.Description)

		t, ok := totals[c]
		if !ok {
			t = &CategoryTotal{Category: c, Amount: decimal.Zero}
			totals[c] = t
		}

		t.Amount = t.Amount.Add(e.Amount)
		t.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return out[:min(len(out), topCategories)]
}

func byMonth(expenses []*ledger.Entry, loc *time.Location) []MonthTotal {
	if loc == nil {
		loc = time.Local
	}

	totals := map[time.Time]*MonthTotal{}

	for _, e := range expenses {
		y, m, _ := e.CreatedAt.In(loc).Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)

		t, ok := totals[start]
		if !ok {
			t = &MonthTotal{Month: start.Format("Jan 2006"), Start: start, Amount: decimal.Zero}
			totals[start] = t
		}

		t.Amount = t.Amount.Add(e.Amount)
		t.Count++
	}

	out := make([]MonthTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}

	slices.SortFunc(out, func(a, b MonthTotal) int { return a.Start.Compare(b.Start) })

	for i := 1; i < len(out); i++ {
		out[i].Change = percentChange(out[i-1].Amount, out[i].Amount)
	}

	return out
}

func percentChange(prev, cur decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}

	pct, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).Float64()

	return &pct
}

// trend compares the two most recent months.
func trend(months []MonthTotal) Trend {
	if len(months) < 2 {
		return TrendStable
	}

	last := months[len(months)-1]
	if last.Change == nil {
		return TrendStable
	}

	switch {
	case *last.Change > trendThreshold:
		return TrendIncreasing
	case *last.Change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// anomalies flags expenses more than two standard deviations above the mean, three
// for high severity.
func anomalies(expenses []*ledger.Entry) []Anomaly {
	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount.InexactFloat64()
	}

	var mean float64
	for _, v := range amounts {
		mean += v
	}

	mean /= float64(len(amounts))

	var variance float64
	for _, v := range amounts {
		variance += (v - mean) * (v - mean)
	}

	stdDev := math.Sqrt(variance / float64(len(amounts)))

	out := []Anomaly{}

	for i, e := range expenses {
		if len(out) == maxAnomalies {
			break
		}

		if amounts[i] <= mean+2*stdDev {
			continue
		}

		sev := SeverityMedium
		if amounts[i] > mean+3*stdDev {
			sev = SeverityHigh
		}

		out = append(out, Anomaly{
			Description: "Unusually large expense: " + e.Description + " (" + notification.FormatAmount(e.Amount) + ")",
			Severity:    sev,
		})
	}

	return out
}
