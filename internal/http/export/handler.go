package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/export"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
)

type Handler struct {
	svc *export.Service
	loc *time.Location
}

func NewHandler(svc *export.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

type summaryResponse struct {
	Count   int    `json:"count"`
	Summary string `json:"summary"`
}

func (h *Handler) rows(w http.ResponseWriter, r *http.Request) ([]export.Row, bool) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return nil, false
	}

	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	rows, err := h.svc.Export(r.Context(), ownerID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return rows, true
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"pocketly_%s.csv\"", time.Now().In(h.loc).Format("20060102")))

	// the status line is already out, so a failure can only be logged
	if err := h.svc.WriteCSV(w, rows); err != nil {
		slog.Error("writing csv export", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{Count: len(rows), Summary: h.svc.Summary(rows)})
}

func (h *Handler) filter(r *http.Request) (export.Filter, error) {
	var f export.Filter

	q := r.URL.Query()

	if raw := q.Get("pocketId"); raw != "" {
		id, err := respond.ID(raw, "Pocket")
		if err != nil {
			return f, err
		}

		f.PocketID = &id
	}

	for name, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}

		t, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			return f, apperr.Validation("%s must be YYYY-MM-DD", name)
		}

		*dst = &t
	}

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, apperr.Validation("to must not be before from")
	}

	return f, nil
}
