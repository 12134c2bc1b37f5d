package statement

import "strings"

type amountMode int

const (
	// amountSigned is one column where negative values are money out.
	amountSigned amountMode = iota
	// amountSplit is a debit column and a credit column, both unsigned.
	amountSplit
)

// Profile is a column layout. Each role lists the header names it is known by; the
// first one present in the file wins.
type Profile struct {
	Name   string
	Date   []string
	Desc   []string
	Mode   amountMode
	Amount []string
	Debit  []string
	Credit []string
}

var (
	dateCols = []string{"trans date", "transaction date", "txn date", "posted date", "date", "value date"}
	descCols = []string{"narration", "description", "remarks", "details", "transaction details", "particulars"}
)

// profiles are tried in order, so layouts with more required columns come first.
var profiles = []Profile{
	{
		Name:   "debit-credit",
		Date:   dateCols,
		Desc:   descCols,
		Mode:   amountSplit,
		Debit:  []string{"debit", "debits", "withdrawal", "withdrawals", "money out", "debit amount"},
		Credit: []string{"credit", "credits", "lodgement", "lodgements", "deposit", "deposits", "money in", "credit amount"},
	},
	{
		Name:   "signed",
		Date:   dateCols,
		Desc:   descCols,
		Mode:   amountSigned,
		Amount: []string{"amount", "transaction amount", "amount (ngn)", "amount(ngn)"},
	},
}

// layout is a Profile resolved against one header row.
type layout struct {
	profile *Profile
	date    int
	desc    int
	amount  int
	debit   int
	credit  int
}

// header normalises a header cell: lower case, no dots, single spaces.
func header(cell string) string {
	cell = strings.ToLower(strings.ReplaceAll(cell, ".", ""))
	return strings.Join(strings.Fields(cell), " ")
}

// resolve matches p against a header row.
func (p *Profile) resolve(row []string) (layout, bool) {
	cols := make(map[string]int, len(row))
	for i, cell := range row {
		if h := header(cell); h != "" {
			if _, dup := cols[h]; !dup {
				cols[h] = i
			}
		}
	}

	find := func(names []string) int {
		for _, n := range names {
			if i, ok := cols[n]; ok {
				return i
			}
		}

		return -1
	}

	l := layout{profile: p, date: find(p.Date), desc: find(p.Desc), amount: -1, debit: -1, credit: -1}
	if l.date < 0 || l.desc < 0 {
		return layout{}, false
	}

	switch p.Mode {
	case amountSigned:
		l.amount = find(p.Amount)
		return l, l.amount >= 0
	case amountSplit:
		l.debit, l.credit = find(p.Debit), find(p.Credit)
		return l, l.debit >= 0 && l.credit >= 0
	}

	return layout{}, false
}
