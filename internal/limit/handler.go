package limit

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/core/category"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	GetAll(ctx context.Context) ([]*CategoryLimit, error)
	UpdateLimit(ctx context.Context, actorID int64, c category.Category, amount decimal.Decimal) (*CategoryLimit, error)
	Categories() []CategoryResponse
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

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.Service.Categories(),
	})
}

func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.Service.GetAll(r.Context())
	if err != nil {
		h.Logger.Error("GetLimits: failed to get limits", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get limits")
		return
	}

	resp := LimitsResponse{Limits: make([]LimitResponse, 0, len(limits))}
	for _, l := range limits {
		resp.Limits = append(resp.Limits, l.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateLimit(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := category.Parse(chi.URLParam(r, "category"))
	if err != nil {
		h.HandleServiceError(w, internal.ErrInvalidCategory)
		return
	}

	var dto UpdateLimitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := dto.Parse()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.UpdateLimit(r.Context(), user.ID, c, amount)
	if err != nil {
		h.Logger.Error("UpdateLimit: service error", "error", err, "category", c, "actor_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated.ToResponse())
}
