package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/festflow/festflow/internal/advance"
	"github.com/festflow/festflow/internal/audit"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/event"
	"github.com/festflow/festflow/internal/expense"
	"github.com/festflow/festflow/internal/history"
	"github.com/festflow/festflow/internal/report"
	"github.com/festflow/festflow/internal/transport/middleware"
	"github.com/festflow/festflow/internal/transport/swagger"
	"github.com/festflow/festflow/internal/upload"
	"github.com/festflow/festflow/internal/user"
	"github.com/go-chi/chi"
)

// Handlers gathers every HTTP handler the router mounts.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Event   *event.Handler
	Expense *expense.Handler
	Advance *advance.Handler
	Report  *report.Handler
	History *history.Handler
	Audit   *audit.Handler
	Upload  *upload.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, uploadsDir string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI spec at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Stored receipts and quotes
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Username picker on the login form
		r.Get("/users", h.User.ListUsernames)

		// Everything below requires a valid token
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.With(h.Auth.Require(auth.ActionEditPayoutID)).
				Patch("/users/me/payout", h.User.UpdatePayout)

			pr.Get("/events", h.Event.ListEvents)

			pr.Post("/uploads", h.Upload.Upload)

			pr.Route("/expenses", func(er chi.Router) {
				er.With(h.Auth.Require(auth.ActionSubmitExpense)).
					Post("/", h.Expense.SubmitExpense)
				er.Get("/mine", h.Expense.MyExpenses)
				er.Get("/pending", h.Expense.PendingExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
				er.With(h.Auth.Require(auth.ActionApproveExpense)).
					Patch("/{id}/approve", h.Expense.ApproveExpense)
				er.With(h.Auth.Require(auth.ActionRejectExpense)).
					Patch("/{id}/reject", h.Expense.RejectExpense)
				er.With(h.Auth.Require(auth.ActionReimburseExpense)).
					Patch("/{id}/reimburse", h.Expense.ReimburseExpense)
				er.With(h.Auth.Require(auth.ActionCommentExpense)).
					Post("/{id}/comments", h.Expense.AddComment)
			})

			pr.Route("/advances", func(ar chi.Router) {
				ar.With(h.Auth.Require(auth.ActionRequestAdvance)).
					Post("/", h.Advance.RequestAdvance)
				ar.Get("/mine", h.Advance.MyAdvances)
				ar.Get("/pending", h.Advance.PendingAdvances)
				ar.Get("/{id}", h.Advance.GetAdvance)
				ar.With(h.Auth.Require(auth.ActionApproveAdvance)).
					Patch("/{id}/approve", h.Advance.ApproveAdvance)
				ar.With(h.Auth.Require(auth.ActionRejectAdvance)).
					Patch("/{id}/reject", h.Advance.RejectAdvance)
				ar.With(h.Auth.Require(auth.ActionPayAdvance)).
					Patch("/{id}/pay", h.Advance.PayAdvance)
				ar.With(h.Auth.Require(auth.ActionCloseAdvance)).
					Patch("/{id}/close", h.Advance.CloseAdvance)
				ar.With(h.Auth.Require(auth.ActionCommentAdvance)).
					Post("/{id}/comments", h.Advance.AddComment)
			})

			pr.With(h.Auth.Require(auth.ActionViewReports)).
				Get("/reports/events/{eventID}", h.Report.GetFinancialReport)

			pr.Route("/history", func(hr chi.Router) {
				hr.Get("/", h.History.ListSeries)
				hr.Get("/{name}", h.History.GetSeries)
			})

			pr.With(h.Auth.Require(auth.ActionViewAuditLog)).
				Get("/audit-log", h.Audit.ListEntries)
		})
	})
}
