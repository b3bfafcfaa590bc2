package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface. Transactions and onboarding routes are
// mounted only when their backing stores are configured.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", h.Health)
	r.Get("/diagnostics", h.Diagnose)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/orchestrate", h.Orchestrate)
	if h.ingestor != nil {
		r.Post("/rag/ingest", h.RagIngest)
	}

	if h.txStore != nil {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/generate", h.GenerateTransactions)
		})
	}

	if h.cases != nil {
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", h.CreateCase)
			r.Get("/{caseID}", h.CaseStatus)
			r.Post("/{caseID}/escalate", h.EscalateCase)
		})
	}

	if h.payments != nil {
		r.Get("/payments/offer-preview", h.OfferPreview)
	}

	if h.tracker != nil {
		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/employees", h.ListEmployees)
			r.Post("/employees", h.CreateEmployee)
			r.Delete("/employees", h.ClearOnboarding)
			r.Get("/employees/{employeeID}", h.EmployeeProgress)
			r.Post("/employees/{employeeID}/tasks/{taskID}/complete", h.CompleteTask)
			r.Get("/analytics", h.OnboardingAnalytics)
		})
	}

	return r
}
