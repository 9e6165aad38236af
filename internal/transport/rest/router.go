package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/field-expense/internal/auth"
	"github.com/frahmantamala/field-expense/internal/expense"
	"github.com/frahmantamala/field-expense/internal/ledger"
	"github.com/frahmantamala/field-expense/internal/limit"
	"github.com/frahmantamala/field-expense/internal/mission"
	"github.com/frahmantamala/field-expense/internal/receipt"
	"github.com/frahmantamala/field-expense/internal/report"
	"github.com/frahmantamala/field-expense/internal/transport/middleware"
	"github.com/frahmantamala/field-expense/internal/transport/swagger"
	"github.com/frahmantamala/field-expense/internal/user"
	"github.com/go-chi/chi"
)

const APIPrefix = "/api/v1"

// Handlers groups the HTTP handlers mounted by RegisterAllRoutes. A nil
// handler leaves its routes unmounted.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Limit   *limit.Handler
	Mission *mission.Handler
	Expense *expense.Handler
	Ledger  *ledger.Handler
	Receipt *receipt.Handler
	Report  *report.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	SpecPath       string

	// Validator is optional; when set every /api/v1 request is checked
	// against the OpenAPI document before routing.
	Validator *middleware.RequestValidator
}

func RegisterAllRoutes(router *chi.Mux, db Pinger, h Handlers, rbac *auth.RBACAuthorization, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.Validator != nil {
		router.Use(opts.Validator.Middleware)
	}

	if opts.SpecPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.SpecPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
			})
		}

		if h.Limit != nil {
			r.Get("/categories", h.Limit.GetCategories)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)

				pr.Route("/admin/users", func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/", h.User.ListUsers)
					ar.Patch("/{id}/approve", h.User.ApproveUser)
					ar.Patch("/{id}/promote", h.User.PromoteUser)
				})
			}

			if h.Limit != nil {
				pr.Get("/limits", h.Limit.GetLimits)
				pr.With(rbac.RequireAdmin()).Put("/limits/{category}", h.Limit.UpdateLimit)
			}

			if h.Mission != nil {
				pr.Route("/missions", func(mr chi.Router) {
					mr.Post("/", h.Mission.StartMission)
					mr.Get("/", h.Mission.ListMissions)
					mr.Get("/active", h.Mission.GetActiveMission)
					mr.Patch("/{id}/complete", h.Mission.CompleteMission)
				})
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", h.Expense.SubmitBatch)
					er.Get("/", h.Expense.ListExpenses)

					if h.Ledger != nil {
						er.Post("/preview", h.Ledger.Preview)
						er.Get("/timeline", h.Ledger.Timeline)
						er.Get("/summary", h.Ledger.Summary)
					}

					er.Get("/{id}", h.Expense.GetExpense)

					er.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Patch("/{id}/approve", h.Expense.ApproveExpense)
						ar.Patch("/{id}/reject", h.Expense.RejectExpense)
						ar.Patch("/{id}/settle", h.Expense.SettleExpense)
					})
				})
			}

			if h.Receipt != nil {
				pr.Post("/receipts", h.Receipt.Upload)
				pr.Get("/receipts/*", h.Receipt.Serve)
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Use(rbac.RequireAdmin())
					rr.Get("/overview", h.Report.Overview)
					rr.Get("/expenses.csv", h.Report.ExportCSV)
				})
			}
		})
	})
}
