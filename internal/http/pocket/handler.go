package pocket

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, params pocket.CreateParams) (*pocket.Pocket, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*pocket.Pocket, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*pocket.Pocket, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params pocket.UpdateParams) (*pocket.Pocket, error)
}

// Deleter removes a pocket and everything recorded against it in one transaction.
type Deleter interface {
	DeletePocket(ctx context.Context, ownerID, pocketID uuid.UUID) error
}

type Handler struct {
	svc     Service
	deleter Deleter
}

func NewHandler(svc Service, deleter Deleter) *Handler {
	return &Handler{svc: svc, deleter: deleter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createPocketRequest struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var req createPocketRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), ownerID, pocket.CreateParams{Name: req.Name, Balance: req.Balance})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	pockets, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(pockets))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Pocket")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updatePocketRequest struct {
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Pocket")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updatePocketRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), ownerID, id, pocket.UpdateParams{Name: req.Name, Balance: req.Balance})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Pocket")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.deleter.DeletePocket(r.Context(), ownerID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Deleted("Pocket"))
}
