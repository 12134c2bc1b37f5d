package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
)

type Service interface {
	List(ctx context.Context, ownerID uuid.UUID, unreadOnly bool) (*notification.ListResult, error)
	SetRead(ctx context.Context, ownerID, id uuid.UUID, read bool) (*notification.Notification, error)
	MarkAllRead(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/read-all", h.markAllRead)
	r.Patch("/{id}", h.setRead)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var unreadOnly bool
	if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, r, apperr.Validation("unreadOnly must be true or false"))
			return
		}

		unreadOnly = v
	}

	res, err := h.svc.List(r.Context(), ownerID, unreadOnly)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Notifications: toResponseList(res.Notifications),
		UnreadCount:   res.UnreadCount,
	})
}

type readRequest struct {
	Read *bool `json:"read"`
}

func (h *Handler) setRead(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Notification")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// an empty body marks the notification read
	var req readRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	read := true
	if req.Read != nil {
		read = *req.Read
	}

	n, err := h.svc.SetRead(r.Context(), ownerID, id, read)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	n, err := h.svc.MarkAllRead(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, markAllReadResponse{UpdatedCount: n})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	id, err := respond.ID(chi.URLParam(r, "id"), "Notification")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.Deleted("Notification"))
}
