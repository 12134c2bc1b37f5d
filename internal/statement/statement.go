// Package statement reads bank statement exports (CSV) into ledger import lines.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
)

var ErrUnrecognized = errors.New("statement: no known column layout found")

var dateLayouts = []string{
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02-Jan-2006 15:04:05",
	time.RFC3339,
}

type Parser struct {
	loc *time.Location
}

// NewParser returns a Parser that reads statement dates as calendar days in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

// Parse finds the header row, skipping any preamble the bank puts above it, and
// returns one line per dated row with a non-zero amount. Footer and balance rows
// without a parseable date are skipped.
func (p *Parser) Parse(r io.Reader) ([]ledger.ImportLine, error) {
	utf8r, err := utf8Reader(r)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = delimiter(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	l, headerIdx, ok := detect(rows)
	if !ok {
		return nil, ErrUnrecognized
	}

	var lines []ledger.ImportLine

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		date, ok := p.date(cell(row, l.date))
		if !ok {
			continue
		}

		kind, amount, ok := l.amountOf(row)
		if !ok {
			continue
		}

		desc := cell(row, l.desc)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		lines = append(lines, ledger.ImportLine{Kind: kind, Amount: amount, Description: desc, Date: date})
	}

	return lines, nil
}

func detect(rows [][]string) (layout, int, bool) {
	for i, row := range rows {
		for j := range profiles {
			if l, ok := profiles[j].resolve(row); ok {
				return l, i, true
			}
		}
	}

	return layout{}, 0, false
}

// delimiter picks whichever of comma, semicolon or tab appears most in the first lines.
func delimiter(text string) rune {
	counts := map[rune]int{}
	n := 0

	for line := range strings.Lines(text) {
		for _, d := range []rune{',', ';', '\t'} {
			counts[d] += strings.Count(line, string(d))
		}

		if n++; n == 20 {
			break
		}
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}

func (p *Parser) date(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, p.loc)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, p.loc), true
		}
	}

	return time.Time{}, false
}

func (l layout) amountOf(row []string) (ledger.Kind, decimal.Decimal, bool) {
	if l.profile.Mode == amountSigned {
		v, ok := parseAmount(cell(row, l.amount))
		if !ok || v.IsZero() {
			return "", decimal.Zero, false
		}

		if v.IsNegative() {
			return ledger.KindExpense, v.Neg(), true
		}

		return ledger.KindIncome, v, true
	}

	if v, ok := parseAmount(cell(row, l.debit)); ok && !v.IsZero() {
		return ledger.KindExpense, v.Abs(), true
	}

	if v, ok := parseAmount(cell(row, l.credit)); ok && !v.IsZero() {
		return ledger.KindIncome, v.Abs(), true
	}

	return "", decimal.Zero, false
}

// parseAmount reads "₦1,234.50", "NGN 1234.5", "-20.00" and "(20.00)".
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer("₦", "", "NGN", "", ",", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if neg {
		v = v.Neg()
	}

	return v, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
