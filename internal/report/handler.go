package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/ledger"
	"github.com/frahmantamala/field-expense/internal/limit"
	"github.com/frahmantamala/field-expense/internal/transport"
)

type ServiceAPI interface {
	Overview(ctx context.Context, actorID int64, filter expense.Filter) (*Overview, error)
	ExportFor(ctx context.Context, actorID int64, filter expense.Filter, w io.Writer) (int, error)
}

type OverviewResponse struct {
	Summary      ledger.SummaryResponse       `json:"summary"`
	Breakdown    ledger.BreakdownResponse     `json:"breakdown"`
	StatusCounts []ledger.StatusCountResponse `json:"status_counts"`
	Limits       []limit.LimitResponse        `json:"limits"`
	UserCount    int                          `json:"user_count"`
	PendingUsers int                          `json:"pending_users"`
	ExpenseCount int                          `json:"expense_count"`
	GeneratedAt  time.Time                    `json:"generated_at"`
}

func (o *Overview) ToResponse() OverviewResponse {
	resp := OverviewResponse{
		Summary:      o.Summary.ToResponse(),
		Breakdown:    o.Breakdown.ToResponse(),
		StatusCounts: ledger.ToStatusCountResponses(o.StatusCounts),
		Limits:       make([]limit.LimitResponse, 0, len(o.Limits)),
		UserCount:    o.UserCount,
		PendingUsers: o.PendingUsers,
		ExpenseCount: o.ExpenseCount,
		GeneratedAt:  o.GeneratedAt,
	}
	for _, l := range o.Limits {
		resp.Limits = append(resp.Limits, l.ToResponse())
	}
	return resp
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Overview handles GET /reports/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := expense.ParseFilter(r.URL.Query(), false)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	o, err := h.Service.Overview(r.Context(), user.ID, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, o.ToResponse())
}

// ExportCSV handles GET /reports/expenses.csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := expense.ParseFilter(r.URL.Query(), false)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	n, err := h.Service.ExportFor(r.Context(), user.ID, filter, &buf)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportCSV: failed to write response", "error", err)
	}
}
