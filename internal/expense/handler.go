package expense

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	SubmitBatch(ctx context.Context, actor *internal.User, dto SubmitBatchDTO) (*SubmitResult, error)
	Get(ctx context.Context, actorID int64, id string) (*Record, error)
	List(ctx context.Context, actorID int64, filter Filter, all bool) ([]*Record, error)
	Approve(ctx context.Context, actorID int64, id string) (*Record, error)
	Reject(ctx context.Context, actorID int64, id, reason string) (*Record, error)
	Settle(ctx context.Context, actorID int64, id string) (*Record, error)
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

func (h *Handler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.Logger.Error("SubmitBatch: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SubmitBatchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitBatch: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.SubmitBatch(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	record, err := h.Service.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

// ListExpenses returns the caller's expenses. Admins may pass all=true.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := ParseFilter(r.URL.Query(), true)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	records, err := h.Service.List(r.Context(), user.ID, filter, r.URL.Query().Get("all") == "true")
	if err != nil {
		h.Logger.Error("ListExpenses: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{
		Expenses: ToResponses(records),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, func(ctx context.Context, actorID int64, id string) (*Record, error) {
		return h.Service.Approve(ctx, actorID, id)
	})
}

func (h *Handler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	var dto RejectExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RejectExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.applyTransition(w, r, func(ctx context.Context, actorID int64, id string) (*Record, error) {
		return h.Service.Reject(ctx, actorID, id, dto.Reason)
	})
}

func (h *Handler) SettleExpense(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, func(ctx context.Context, actorID int64, id string) (*Record, error) {
		return h.Service.Settle(ctx, actorID, id)
	})
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64, string) (*Record, error)) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	record, err := apply(r.Context(), user.ID, id)
	if err != nil {
		h.Logger.Error("expense transition failed", "error", err, "expense_id", id, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}
