package need

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/need"
)

type needResponse struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Priority  need.Priority   `json:"priority"`
	Completed bool            `json:"completed"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toResponse(n *need.Need) needResponse {
	return needResponse{
		ID:        n.ID,
		Title:     n.Title,
		Amount:    n.Amount,
		Priority:  n.Priority,
		Completed: n.Completed,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toResponseList(needs []*need.Need) []needResponse {
	resp := make([]needResponse, len(needs))
	for i, n := range needs {
		resp[i] = toResponse(n)
	}

	return resp
}
