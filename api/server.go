/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RequestLog: Structured request logging (logrus)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/salary/*              Salary rule
  /api/recurring-expenses/*  Recurring expenses
  /api/incomes, /api/expenses, /api/transactions, /api/balance
  /api/calendar/*            Month view and day detail
  /api/projection            Balance projection
  /api/savings-goal/*        Goal and simulation
  /api/reminders, /api/budget, /api/statistics
  /api/scenarios/*           Demo scenarios
  /api/reset                 Database reset (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; run behind a
  trusted proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/finance/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/salary", func(r chi.Router) {
			r.Get("/", h.GetSalary)
			r.Put("/", h.PutSalary)
			r.Delete("/", h.DeleteSalary)
		})

		r.Route("/recurring-expenses", func(r chi.Router) {
			r.Get("/", h.ListRecurringExpenses)
			r.Post("/", h.CreateRecurringExpense)
			r.Put("/{id}", h.UpdateRecurringExpense)
			r.Delete("/{id}", h.DeleteRecurringExpense)
			r.Get("/{id}/next", h.NextOccurrence)
		})

		// Transaction routes
		r.Post("/incomes", h.CreateIncome)
		r.Post("/expenses", h.CreateExpense)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/balance", h.GetBalance)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", h.GetCalendarMonth)
			r.Get("/{date}", h.GetCalendarDay)
		})
		r.Get("/projection", h.GetProjection)

		r.Route("/savings-goal", func(r chi.Router) {
			r.Get("/", h.GetSavingsGoal)
			r.Put("/", h.PutSavingsGoal)
			r.Put("/current", h.UpdateCurrentSavings)
			r.Post("/simulate", h.SimulateSavings)
		})

		r.Get("/reminders", h.GetReminders)
		r.Get("/budget", h.GetBudget)
		r.Get("/statistics", h.GetStatistics)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
		r.Post("/reset", h.ResetDatabase)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// RequestLogger logs one line per request with status and latency.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			})
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				entry.Error("request failed")
			case ww.Status() >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
		})
	}
}
