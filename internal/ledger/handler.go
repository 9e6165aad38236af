package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/transport"
)

// ExpenseReader is the slice of the expense service the ledger views need.
type ExpenseReader interface {
	List(ctx context.Context, actorID int64, filter expense.Filter, all bool) ([]*expense.Record, error)
	Preview(ctx context.Context, actor *internal.User, dto expense.SubmitBatchDTO) (*expense.SubmitResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Expenses ExpenseReader
	now      func() time.Time
}

func NewHandler(baseHandler *transport.BaseHandler, expenses ExpenseReader) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Expenses:    expenses,
		now:         time.Now,
	}
}

// Timeline handles GET /expenses/timeline
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	records, ok := h.load(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, ToTimelineResponse(GroupByDate(records)))
}

// Summary handles GET /expenses/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	records, ok := h.load(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, Summarize(records, h.now()).ToResponse())
}

// Preview handles POST /expenses/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto expense.SubmitBatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Expenses.Preview(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PreviewResponse{
		LiveTotal: LiveTotal(result.Records).StringFixed(2),
		Expenses:  expense.ToResponses(result.Records),
		Warnings:  expense.ToWarningResponses(result.Warnings),
		OverLimit: expense.CountExceeded(result.Warnings),
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]*expense.Record, bool) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	filter, err := expense.ParseFilter(r.URL.Query(), false)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}

	records, err := h.Expenses.List(r.Context(), user.ID, filter, r.URL.Query().Get("all") == "true")
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}
	return records, true
}
