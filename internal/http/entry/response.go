package entry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
)

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        ledger.Kind     `json:"type"`
	PocketID    uuid.UUID       `json:"pocketId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Type:        e.Kind,
		PocketID:    e.PocketID,
		Amount:      e.Amount,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}
