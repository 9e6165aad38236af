package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/transport"
)

type RBACAuthorization struct {
	checker PermissionChecker
	logger  *slog.Logger
	base    *transport.BaseHandler
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		checker: checker,
		logger:  logger,
		base:    transport.NewBaseHandler(logger),
	}
}

// Middleware admits requests whose user holds permission.
func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: user not found in context")
				ra.base.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			hasAccess, err := ra.checker.HasPermission(r.Context(), user.Permissions, permission)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID, "permission", permission)
				ra.base.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !hasAccess {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", permission,
					"user_permissions", user.Permissions)
				ra.base.HandleServiceError(w, internal.ErrUnauthorizedAccess)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Middleware(internal.PermissionAdmin)
}
