package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/pocketly/internal/category"
	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

var ErrRateLimited = errors.New("insights: model rate limit reached")

// maxCategorize caps how many descriptions go to the model in one categorisation prompt.
const maxCategorize = 100

// Generator turns a prompt into free text. gemini.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Expenses interface {
	List(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, pocketID *uuid.UUID) ([]*ledger.Entry, error)
}

type Pockets interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*pocket.Pocket, error)
}

type Categories interface {
	Matcher(ctx context.Context, ownerID uuid.UUID) (*category.Matcher, error)
}

type Config struct {
	// Generator is optional; without one every request uses the local fallback.
	Generator Generator
	// Limiter bounds model calls across all owners. Nil means unlimited.
	Limiter  *rate.Limiter
	Location *time.Location
	Logger   *slog.Logger
}

type Service struct {
	expenses   Expenses
	pockets    Pockets
	categories Categories
	cfg        Config
}

func NewService(expenses Expenses, pockets Pockets, categories Categories, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{expenses: expenses, pockets: pockets, categories: categories, cfg: cfg}
}

// Generate builds the owner's spending analysis. A missing, failing or rate-limited
// model never fails the request; the local fallback fills in the advice instead.
func (s *Service) Generate(ctx context.Context, ownerID uuid.UUID) (*Analysis, error) {
	expenses, err := s.expenses.List(ctx, ownerID, ledger.KindExpense, nil)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	if len(expenses) == 0 {
		a := Analyze(nil, nil, s.cfg.Location)
		a.Insights = []string{"You haven't recorded any expenses yet. Start tracking to get personalized insights!"}
		a.Recommendations = []string{"Add your first expense to begin analyzing your spending patterns."}

		return a, nil
	}

	matcher, err := s.categories.Matcher(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pockets, err := s.pockets.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing pockets: %w", err)
	}

	modelCategories := s.categorize(ctx, ownerID, expenses, matcher)

	a := Analyze(expenses, func(desc string) string {
		if c, ok := matcher.Match(desc); ok {
			return c
		}

		if c, ok := modelCategories[desc]; ok {
			return c
		}

		return category.Keyword(desc)
	}, s.cfg.Location)

	a.Insights, a.Recommendations, err = s.advise(ctx, a, pockets)
	if err != nil {
		s.cfg.Logger.Warn("using fallback insights", "owner_id", ownerID, "error", err)
		a.Insights, a.Recommendations = fallbackAdvice(a)
	}

	return a, nil
}

// categorize asks the model for categories of descriptions no rule matched.
// Any failure yields an empty map so keywords take over.
func (s *Service) categorize(ctx context.Context, ownerID uuid.UUID, expenses []*ledger.Entry, m *category.Matcher) map[string]string {
	var pending []*ledger.Entry

	for _, e := range expenses {
		if _, ok := m.Match(e.Description); !ok {
			pending = append(pending, e)
		}
	}

	if len(pending) == 0 {
		return nil
	}

	pending = pending[:min(len(pending), maxCategorize)]

	text, err := s.ask(ctx, categorizePrompt(pending))
	if err != nil {
		s.cfg.Logger.Warn("model categorization unavailable", "owner_id", ownerID, "error", err)
		return nil
	}

	return parseCategories(text, pending)
}

func (s *Service) advise(ctx context.Context, a *Analysis, pockets []*pocket.Pocket) ([]string, []string, error) {
	prompt, err := advicePrompt(a, pockets)
	if err != nil {
		return nil, nil, err
	}

	text, err := s.ask(ctx, prompt)
	if err != nil {
		return nil, nil, err
	}

	return parseAdvice(text)
}

func (s *Service) ask(ctx context.Context, prompt string) (string, error) {
	if s.cfg.Generator == nil {
		return "", errors.New("insights: no model configured")
	}

	if s.cfg.Limiter != nil && !s.cfg.Limiter.Allow() {
		return "", ErrRateLimited
	}

	return s.cfg.Generator.Generate(ctx, prompt)
}

func categorizePrompt(expenses []*ledger.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Categorize these expenses into one of the following categories:\n%s\n\n", strings.Join(category.All, ", "))
	b.WriteString("Expenses to categorize:\n")

	for i, e := range expenses {
		fmt.Fprintf(&b, "%d: %q (%s)\n", i, e.Description, notification.FormatAmount(e.Amount))
	}

	b.WriteString(`
Return ONLY a JSON object mapping the expense index to its category. Example format:
{"0": "Food & Dining", "1": "Transportation"}

Be precise and consistent. Consider the context of each expense description.`)

	return b.String()
}

// parseCategories keeps only answers naming a known category.
func parseCategories(text string, expenses []*ledger.Entry) map[string]string {
	raw, ok := jsonObject(text)
	if !ok {
		return nil
	}

	var byIndex map[string]string
	if err := json.Unmarshal([]byte(raw), &byIndex); err != nil {
		return nil
	}

	out := make(map[string]string, len(byIndex))

	for i, e := range expenses {
		if c := byIndex[strconv.Itoa(i)]; category.Valid(c) {
			out[e.Description] = c
		}
	}

	return out
}

type promptCategory struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage string          `json:"percentage"`
}

type promptMonth struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type promptData struct {
	TotalSpent         decimal.Decimal  `json:"totalSpent"`
	TotalExpenses      int              `json:"totalExpenses"`
	AveragePerExpense  decimal.Decimal  `json:"averagePerExpense"`
	AveragePerDay      decimal.Decimal  `json:"averagePerDay"`
	TopCategories      []promptCategory `json:"topCategories"`
	SpendingTrend      Trend            `json:"spendingTrend"`
	MonthlyBreakdown   []promptMonth    `json:"monthlyBreakdown"`
	TotalPockets       int              `json:"totalPockets"`
	TotalPocketBalance decimal.Decimal  `json:"totalPocketBalance"`
}

// advicePrompt sends only aggregates: at most five categories and the last six months.
func advicePrompt(a *Analysis, pockets []*pocket.Pocket) (string, error) {
	data := promptData{
		TotalSpent:         a.TotalSpent,
		TotalExpenses:      a.TotalExpenses,
		AveragePerExpense:  a.AveragePerExpense,
		AveragePerDay:      a.AveragePerDay,
		SpendingTrend:      a.SpendingTrend,
		TotalPockets:       len(pockets),
		TotalPocketBalance: decimal.Zero,
	}

	for _, c := range a.TopCategories {
		pct := c.Amount.Div(a.TotalSpent).Mul(decimal.NewFromInt(100)).StringFixed(1)
		data.TopCategories = append(data.TopCategories, promptCategory{Category: c.Category, Amount: c.Amount, Percentage: pct})
	}

	for _, m := range a.MonthlyBreakdown[max(0, len(a.MonthlyBreakdown)-6):] {
		data.MonthlyBreakdown = append(data.MonthlyBreakdown, promptMonth{Month: m.Month, Amount: m.Amount, Count: m.Count})
	}

	for _, p := range pockets {
		data.TotalPocketBalance = data.TotalPocketBalance.Add(p.Balance)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding prompt data: %w", err)
	}

	return fmt.Sprintf(`You are a financial advisor analyzing spending data. Provide insights and recommendations based on this data:

%s

Provide:
1. 3-5 key insights about spending patterns (be specific and actionable)
2. 3-5 personalized recommendations to improve financial health

Format your response as JSON:
{
  "insights": ["insight 1", "insight 2", ...],
  "recommendations": ["recommendation 1", "recommendation 2", ...]
}

Be concise, practical, and encouraging. Use the currency symbol ₦ when mentioning amounts.`, payload), nil
}

// parseAdvice accepts either the requested JSON object or free text, from which
// lines are picked by keyword.
func parseAdvice(text string) ([]string, []string, error) {
	if raw, ok := jsonObject(text); ok {
		var parsed struct {
			Insights        []string `json:"insights"`
			Recommendations []string `json:"recommendations"`
		}

		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, nil, fmt.Errorf("decoding model advice: %w", err)
		}

		if len(parsed.Insights) == 0 && len(parsed.Recommendations) == 0 {
			return nil, nil, errors.New("model advice is empty")
		}

		return parsed.Insights, parsed.Recommendations, nil
	}

	var insights, recs []string

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)

		if len(insights) < 5 && containsAny(lower, "insight", "spending", "pattern") {
			insights = append(insights, line)
		}

		if len(recs) < 5 && containsAny(lower, "recommend", "suggest", "should") {
			recs = append(recs, line)
		}
	}

	if len(insights) == 0 && len(recs) == 0 {
		return nil, nil, errors.New("model advice has no usable lines")
	}

	return insights, recs, nil
}

func fallbackAdvice(a *Analysis) ([]string, []string) {
	insights := []string{
		fmt.Sprintf("You've spent %s across %d expenses", notification.FormatAmount(a.TotalSpent), a.TotalExpenses),
		fmt.Sprintf("Your average expense is %s", notification.FormatAmount(a.AveragePerExpense)),
		fmt.Sprintf("You're spending an average of %s per day", notification.FormatAmount(a.AveragePerDay)),
	}

	recs := []string{
		"Review your top spending categories to identify areas for savings",
		"Set monthly spending limits for categories where you spend the most",
		"Track your expenses regularly to maintain awareness of your spending",
	}

	return insights, recs
}

// jsonObject returns the text from the first '{' to the last '}'.
func jsonObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return "", false
	}

	return text[start : end+1], true
}

func containsAny(s string, subs ...string) bool {
	return slices.ContainsFunc(subs, func(sub string) bool { return strings.Contains(s, sub) })
}
