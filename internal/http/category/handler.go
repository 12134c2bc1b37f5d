package category

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/category"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
)

type Service interface {
	Suggest(ctx context.Context, ownerID uuid.UUID, description string) (string, error)
	Learn(ctx context.Context, ownerID uuid.UUID, params category.LearnParams) (*category.Rule, error)
	Rules(ctx context.Context, ownerID uuid.UUID) ([]category.Rule, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.categories)
	r.Get("/suggest", h.suggest)
	r.Get("/rules", h.rules)
	r.Post("/rules", h.learn)
}

type ruleResponse struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func toRuleResponse(rule *category.Rule) ruleResponse {
	return ruleResponse{
		ID:        rule.ID,
		Pattern:   rule.Pattern,
		Category:  rule.Category,
		CreatedAt: rule.CreatedAt,
	}
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, category.All)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	desc := strings.TrimSpace(r.URL.Query().Get("description"))
	if desc == "" {
		respond.Error(w, r, apperr.Validation("Description is required"))
		return
	}

	c, err := h.svc.Suggest(r.Context(), ownerID, desc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{Description: desc, Category: c})
}

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	rules, err := h.svc.Rules(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i := range rules {
		resp[i] = toRuleResponse(&rules[i])
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var params category.LearnParams
	if err := respond.Decode(r, &params); err != nil {
		respond.Error(w, r, err)
		return
	}

	rule, err := h.svc.Learn(r.Context(), ownerID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toRuleResponse(rule))
}
