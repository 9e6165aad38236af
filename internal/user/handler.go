package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	List(ctx context.Context, actorID int64) ([]*User, error)
	Approve(ctx context.Context, actorID, userID int64) (*User, error)
	Promote(ctx context.Context, actorID, userID int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service GetByID failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.List(r.Context(), actor.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users})
}

func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, h.Service.Approve)
}

func (h *Handler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, h.Service.Promote)
}

func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, actorID, userID int64) (*User, error)) {
	actor, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := action(r.Context(), actor.ID, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}
