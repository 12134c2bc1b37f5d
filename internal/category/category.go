// Package category assigns spending categories to expense descriptions, first from
// rules the owner taught and then from a built-in keyword list.
package category

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const Other = "Other"

// All lists every category an expense can land in.
var All = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Bills & Utilities",
	"Entertainment",
	"Health & Medical",
	"Education",
	"Subscriptions",
	"Travel",
	"Personal Care",
	"Home & Garden",
	"Gifts & Donations",
	"Fitness & Sports",
	"Insurance",
	"Investments",
	Other,
}

func Valid(c string) bool {
	return slices.Contains(All, c)
}

// Rule maps every description containing Pattern, case-insensitively, to Category.
type Rule struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Pattern   string
	Category  string
	CreatedAt time.Time
}

// keywords is checked top to bottom; the first group with a hit wins.
var keywords = []struct {
	category string
	words    []string
}{
	{"Food & Dining", []string{"food", "restaurant", "grocery", "meal", "eat", "lunch", "dinner", "breakfast", "cafe", "coffee"}},
	{"Transportation", []string{"transport", "uber", "taxi", "fuel", "gas", "bus", "train", "flight", "parking"}},
	{"Shopping", []string{"shopping", "store", "mall", "buy", "purchase", "cloth", "fashion"}},
	{"Bills & Utilities", []string{"bills", "utility", "electricity", "water", "internet", "phone", "rent"}},
	{"Entertainment", []string{"entertainment", "movie", "game", "netflix", "stream", "concert", "show"}},
	{"Health & Medical", []string{"health", "medical", "pharmacy", "doctor", "hospital", "medicine", "clinic"}},
	{"Education", []string{"education", "school", "course", "book", "tuition", "training"}},
	{"Subscriptions", []string{"subscription", "membership", "premium", "monthly fee"}},
	{"Fitness & Sports", []string{"gym", "fitness", "sport", "workout"}},
	{"Travel", []string{"hotel", "travel", "vacation", "trip"}},
	{"Insurance", []string{"insurance", "policy"}},
	{"Gifts & Donations", []string{"gift", "donation", "charity"}},
}

// Keyword categorises a description from the built-in keyword list.
func Keyword(description string) string {
	desc := strings.ToLower(description)

	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(desc, w) {
				return k.category
			}
		}
	}

	return Other
}

// Matcher applies an owner's rules in memory, longest pattern first, newest first on ties.
type Matcher struct {
	rules []Rule
}

func NewMatcher(rules []Rule) *Matcher {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		if c := cmp.Compare(len(b.Pattern), len(a.Pattern)); c != 0 {
			return c
		}

		return b.CreatedAt.Compare(a.CreatedAt)
	})

	for i := range sorted {
		sorted[i].Pattern = strings.ToLower(sorted[i].Pattern)
	}

	return &Matcher{rules: sorted}
}

// Match returns the category of the first rule the description contains.
func (m *Matcher) Match(description string) (string, bool) {
	desc := strings.ToLower(description)

	for _, r := range m.rules {
		if strings.Contains(desc, r.Pattern) {
			return r.Category, true
		}
	}

	return "", false
}

// Categorize falls back to Keyword when no rule matches.
func (m *Matcher) Categorize(description string) string {
	if c, ok := m.Match(description); ok {
		return c
	}

	return Keyword(description)
}
