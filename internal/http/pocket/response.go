package pocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

type pocketResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Balance        decimal.Decimal      `json:"balance"`
	InitialBalance decimal.Decimal      `json:"initialBalance"`
	BalanceSource  pocket.BalanceSource `json:"balanceSource"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func toResponse(p *pocket.Pocket) pocketResponse {
	return pocketResponse{
		ID:             p.ID,
		Name:           p.Name,
		Balance:        p.Balance,
		InitialBalance: p.InitialBalance,
		BalanceSource:  p.BalanceSource,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toResponseList(pockets []*pocket.Pocket) []pocketResponse {
	resp := make([]pocketResponse, len(pockets))
	for i, p := range pockets {
		resp[i] = toResponse(p)
	}

	return resp
}
