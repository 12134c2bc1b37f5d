package streak

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/streak"
)

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (streak.State, error)
	Trigger(ctx context.Context, userID uuid.UUID) (streak.Result, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.trigger)
}

type streakResponse struct {
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
	LastStreakDate *string `json:"lastStreakDate"`
}

type triggerResponse struct {
	streakResponse
	StreakUpdated bool `json:"streakUpdated"`
}

func toResponse(s streak.State) streakResponse {
	resp := streakResponse{CurrentStreak: s.Current, LongestStreak: s.Longest}
	if s.LastDate != nil {
		resp.LastStreakDate = new(s.LastDate.Format(time.DateOnly))
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(s))
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Trigger(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, triggerResponse{
		streakResponse: toResponse(res.State),
		StreakUpdated:  res.Updated,
	})
}
