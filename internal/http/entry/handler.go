// Package entry serves expenses and income records, one Handler per kind, plus the
// combined activity feed.
package entry

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, params ledger.CreateParams) (*ledger.Entry, error)
	Update(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, id uuid.UUID, params ledger.UpdateParams) (*ledger.Entry, error)
	Delete(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, id uuid.UUID) error
	Get(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, id uuid.UUID) (*ledger.Entry, error)
	List(ctx context.Context, ownerID uuid.UUID, kind ledger.Kind, pocketID *uuid.UUID) ([]*ledger.Entry, error)
	Activity(ctx context.Context, ownerID uuid.UUID, pocketID *uuid.UUID) ([]*ledger.Entry, error)
}

type Handler struct {
	svc  Service
	kind ledger.Kind
}

func NewHandler(svc Service, kind ledger.Kind) *Handler {
	return &Handler{svc: svc, kind: kind}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type entryRequest struct {
	PocketID    string          `json:"pocketId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := ledger.CreateParams{Amount: req.Amount, Description: req.Description}

	// an empty pocketId is left to validation; a malformed one cannot name a pocket
	if req.PocketID != "" {
		id, err := respond.ID(req.PocketID, "Pocket")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.PocketID = id
	}

	e, err := h.svc.Create(r.Context(), ownerID, h.kind, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	pocketID, err := pocketFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	entries, err := h.svc.List(r.Context(), ownerID, h.kind, pocketID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(entries))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), h.kind.Resource())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), ownerID, h.kind, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), h.kind.Resource())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req entryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), ownerID, h.kind, id, ledger.UpdateParams{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), h.kind.Resource())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, h.kind, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Deleted(h.kind.Resource()))
}

// Activity serves expenses and income interleaved, newest first.
func Activity(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := auth.Caller(w, r)
		if !ok {
			return
		}

		pocketID, err := pocketFilter(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		entries, err := svc.Activity(r.Context(), ownerID, pocketID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponseList(entries))
	}
}

func pocketFilter(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("pocketId")
	if raw == "" {
		return nil, nil
	}

	id, err := respond.ID(raw, "Pocket")
	if err != nil {
		return nil, err
	}

	return &id, nil
}
