package need

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/need"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, params need.Params) (*need.Need, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*need.Need, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*need.Need, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params need.Params) (*need.Need, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type needRequest struct {
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Priority  need.Priority   `json:"priority"`
	Completed bool            `json:"completed"`
}

func (req needRequest) params() need.Params {
	return need.Params{
		Title:     req.Title,
		Amount:    req.Amount,
		Priority:  req.Priority,
		Completed: req.Completed,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var req needRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.svc.Create(r.Context(), ownerID, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(n))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	needs, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(needs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Need")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Need")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req needRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.svc.Update(r.Context(), ownerID, id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Need")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Deleted("Need"))
}
