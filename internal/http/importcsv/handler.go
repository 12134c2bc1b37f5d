// Package importcsv serves bank statement uploads: a preview that parses and
// categorises without writing, and a confirm step that records the lines.
package importcsv

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/category"
	"github.com/MrJamesThe3rd/pocketly/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/statement"
)

const maxUploadSize = 5 << 20

type Parser interface {
	Parse(r io.Reader) ([]ledger.ImportLine, error)
}

type Importer interface {
	Import(ctx context.Context, ownerID, pocketID uuid.UUID, lines []ledger.ImportLine) (*ledger.ImportResult, error)
}

type Categories interface {
	Matcher(ctx context.Context, ownerID uuid.UUID) (*category.Matcher, error)
}

type Handler struct {
	parser     Parser
	importer   Importer
	categories Categories
	loc        *time.Location
}

// NewHandler reads confirmed line dates as calendar days in loc.
func NewHandler(parser Parser, importer Importer, categories Categories, loc *time.Location) *Handler {
	return &Handler{parser: parser, importer: importer, categories: categories, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.preview)
	r.Post("/confirm", h.confirm)
}

type lineDTO struct {
	Type        ledger.Kind     `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
}

type previewResponse struct {
	Lines    []lineDTO       `json:"lines"`
	Expenses decimal.Decimal `json:"totalExpenses"`
	Income   decimal.Decimal `json:"totalIncome"`
}

type confirmRequest struct {
	PocketID string    `json:"pocketId"`
	Lines    []lineDTO `json:"lines"`
}

type entryDTO struct {
	ID          uuid.UUID       `json:"id"`
	Type        ledger.Kind     `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type confirmResponse struct {
	PocketID uuid.UUID       `json:"pocketId"`
	Balance  decimal.Decimal `json:"balance"`
	Expenses int             `json:"expenses"`
	Income   int             `json:"income"`
	Entries  []entryDTO      `json:"entries"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, apperr.Validation("Upload must be a multipart form under 5MB"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Validation("File is required"))
		return
	}
	defer file.Close()

	lines, err := h.parser.Parse(file)
	if errors.Is(err, statement.ErrUnrecognized) {
		respond.Error(w, r, apperr.Validation("Unrecognised statement format: expected date, description and amount or debit/credit columns"))
		return
	}

	if err != nil {
		respond.Error(w, r, apperr.Validation("Could not read statement: %v", err))
		return
	}

	m, err := h.categories.Matcher(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := previewResponse{Lines: make([]lineDTO, len(lines))}
	for i, l := range lines {
		dto := toLineDTO(l)
		if l.Kind == ledger.KindExpense {
			dto.Category = m.Categorize(l.Description)
			resp.Expenses = resp.Expenses.Add(l.Amount)
		} else {
			resp.Income = resp.Income.Add(l.Amount)
		}

		resp.Lines[i] = dto
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.Caller(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	pocketID, err := respond.ID(req.PocketID, "Pocket")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	lines := make([]ledger.ImportLine, len(req.Lines))
	for i, dto := range req.Lines {
		date, err := time.ParseInLocation(time.DateOnly, dto.Date, h.loc)
		if err != nil {
			respond.Error(w, r, apperr.Validation("Line %d: date must be YYYY-MM-DD", i+1))
			return
		}

		lines[i] = ledger.ImportLine{Kind: dto.Type, Amount: dto.Amount, Description: dto.Description, Date: date}
	}

	res, err := h.importer.Import(r.Context(), ownerID, pocketID, lines)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := confirmResponse{
		PocketID: res.Pocket.ID,
		Balance:  res.Pocket.Balance,
		Expenses: res.Expenses,
		Income:   res.Income,
		Entries:  make([]entryDTO, len(res.Entries)),
	}
	for i, e := range res.Entries {
		resp.Entries[i] = entryDTO{
			ID:          e.ID,
			Type:        e.Kind,
			Amount:      e.Amount,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		}
	}

	respond.JSON(w, http.StatusCreated, resp)
}

func toLineDTO(l ledger.ImportLine) lineDTO {
	return lineDTO{
		Type:        l.Kind,
		Amount:      l.Amount,
		Description: l.Description,
		Date:        l.Date.Format(time.DateOnly),
	}
}
