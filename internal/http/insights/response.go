package insights

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/insights"
)

type categoryResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

type monthResponse struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
	Change *float64        `json:"change"`
}

type anomalyResponse struct {
	Description string            `json:"description"`
	Severity    insights.Severity `json:"severity"`
}

type analysisResponse struct {
	TotalSpent        decimal.Decimal    `json:"totalSpent"`
	TotalExpenses     int                `json:"totalExpenses"`
	AveragePerExpense decimal.Decimal    `json:"averagePerExpense"`
	AveragePerDay     decimal.Decimal    `json:"averagePerDay"`
	TopCategories     []categoryResponse `json:"topCategories"`
	SpendingTrend     insights.Trend     `json:"spendingTrend"`
	MonthlyBreakdown  []monthResponse    `json:"monthlyBreakdown"`
	Anomalies         []anomalyResponse  `json:"anomalies"`
	Insights          []string           `json:"insights"`
	Recommendations   []string           `json:"recommendations"`
}

func toResponse(a *insights.Analysis) analysisResponse {
	resp := analysisResponse{
		TotalSpent:        a.TotalSpent,
		TotalExpenses:     a.TotalExpenses,
		AveragePerExpense: a.AveragePerExpense,
		AveragePerDay:     a.AveragePerDay,
		SpendingTrend:     a.SpendingTrend,
		TopCategories:     make([]categoryResponse, len(a.TopCategories)),
		MonthlyBreakdown:  make([]monthResponse, len(a.MonthlyBreakdown)),
		Anomalies:         make([]anomalyResponse, len(a.Anomalies)),
		Insights:          a.Insights,
		Recommendations:   a.Recommendations,
	}

	for i, c := range a.TopCategories {
		resp.TopCategories[i] = categoryResponse(c)
	}

	for i, m := range a.MonthlyBreakdown {
		resp.MonthlyBreakdown[i] = monthResponse{Month: m.Month, Amount: m.Amount, Count: m.Count, Change: m.Change}
	}

	for i, an := range a.Anomalies {
		resp.Anomalies[i] = anomalyResponse(an)
	}

	if resp.Insights == nil {
		resp.Insights = []string{}
	}

	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}

	return resp
}
