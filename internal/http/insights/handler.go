package insights

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/insights"
)

type Service interface {
	Generate(ctx context.Context, ownerID uuid.UUID) (*insights.Analysis, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Generate(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}
