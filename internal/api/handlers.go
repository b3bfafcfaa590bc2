package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "agent-orchestrator/internal/common/errors"
	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/onboarding"
	"agent-orchestrator/internal/orchestrator"
	"agent-orchestrator/internal/retrieval"
	"agent-orchestrator/internal/tools"
	"agent-orchestrator/internal/transactions"
)

// Ingestor is the document-indexing surface exposed on the admin route.
type Ingestor interface {
	Ingest(ctx context.Context, namespace string, docs []retrieval.Document) (int, error)
}

// HandlerOptions wires the service dependencies behind the HTTP surface.
// Pipeline, Diagnostics and Logger are required; optional dependencies left
// nil have their routes unmounted.
type HandlerOptions struct {
	Pipeline    *orchestrator.Pipeline
	Ingestor    Ingestor
	TxStore     *transactions.Store
	Tracker     *onboarding.Tracker
	Cases       tools.CaseManager
	Payments    tools.PaymentAdvisor
	Diagnostics *Diagnostics
	Logger      logger.Logger
}

type Handler struct {
	pipeline *orchestrator.Pipeline
	ingestor Ingestor
	txStore  *transactions.Store
	tracker  *onboarding.Tracker
	cases    tools.CaseManager
	payments tools.PaymentAdvisor
	diag     *Diagnostics
	logger   logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		pipeline: opts.Pipeline,
		ingestor: opts.Ingestor,
		txStore:  opts.TxStore,
		tracker:  opts.Tracker,
		cases:    opts.Cases,
		payments: opts.Payments,
		diag:     opts.Diagnostics,
		logger:   opts.Logger,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"detail": message})
}

// Orchestrate handles POST /orchestrate. An unresolved persona is the only
// client error; everything else inside the pipeline degrades.
func (h *Handler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.pipeline.Orchestrate(r.Context(), req)
	if err != nil {
		if apperrors.IsClientError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Orchestration failed", map[string]interface{}{
			"persona": req.Persona,
			"error":   err.Error(),
		})
		h.respondError(w, http.StatusInternalServerError, "orchestration failed")
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

type ingestRequest struct {
	Namespace string               `json:"namespace"`
	Documents []retrieval.Document `json:"documents"`
}

// RagIngest handles POST /rag/ingest: chunk, embed and upsert documents.
func (h *Handler) RagIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Namespace == "" || len(req.Documents) == 0 {
		h.respondError(w, http.StatusBadRequest, "namespace and documents are required")
		return
	}

	count, err := h.ingestor.Ingest(r.Context(), req.Namespace, req.Documents)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, "ingest failed: "+err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"ingested": count, "namespace": req.Namespace})
}

type generateTransactionsRequest struct {
	UserID         string  `json:"user_id"`
	StartDate      string  `json:"start_date"`
	Months         int     `json:"months"`
	InitialBalance float64 `json:"initial_balance"`
	Seed           int64   `json:"seed"`
}

// GenerateTransactions handles POST /transactions/generate.
func (h *Handler) GenerateTransactions(w http.ResponseWriter, r *http.Request) {
	var req generateTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Months <= 0 {
		req.Months = 3
	}
	if req.InitialBalance == 0 {
		req.InitialBalance = 2500
	}

	start := time.Now().AddDate(0, 0, -30*req.Months)
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		start = parsed
	}

	gen := transactions.NewGenerator(req.InitialBalance, req.Seed)
	records := gen.Generate(req.UserID, start, req.Months)
	if err := h.txStore.InsertBatch(r.Context(), records); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to store transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"generated": len(records), "user_id": req.UserID})
}

// ListTransactions handles GET /transactions?user_id=&limit=.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.txStore.List(r.Context(), userID, limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	if records == nil {
		records = []transactions.Transaction{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"transactions": records, "count": len(records)})
}

type createEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Manager    string `json:"manager"`
}

// CreateEmployee handles POST /onboarding/employees.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Role == "" {
		h.respondError(w, http.StatusBadRequest, "name and role are required")
		return
	}

	employee, err := h.tracker.CreateEmployee(r.Context(), req.Name, req.Email, req.Role, req.Department, req.Manager)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to create employee")
		return
	}
	h.respondJSON(w, http.StatusCreated, employee)
}

// ListEmployees handles GET /onboarding/employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	reports, err := h.tracker.ListEmployees(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"employees": reports, "count": len(reports)})
}

// EmployeeProgress handles GET /onboarding/employees/{employeeID}.
func (h *Handler) EmployeeProgress(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.Progress(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// CompleteTask handles POST /onboarding/employees/{employeeID}/tasks/{taskID}/complete.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.CompleteTask(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// OnboardingAnalytics handles GET /onboarding/analytics.
func (h *Handler) OnboardingAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.tracker.ComputeAnalytics(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	h.respondJSON(w, http.StatusOK, analytics)
}

// ClearOnboarding handles DELETE /onboarding/employees.
func (h *Handler) ClearOnboarding(w http.ResponseWriter, r *http.Request) {
	removed, err := h.tracker.Clear(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to clear onboarding state")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

type createCaseRequest struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateCase handles POST /cases.
func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Type == "" {
		h.respondError(w, http.StatusBadRequest, "user_id and type are required")
		return
	}

	created, err := h.cases.Create(r.Context(), req.UserID, req.Type, req.Description, req.Priority)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to create case")
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// CaseStatus handles GET /cases/{caseID}.
func (h *Handler) CaseStatus(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Status(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

type escalateCaseRequest struct {
	Reason string `json:"reason"`
}

// EscalateCase handles POST /cases/{caseID}/escalate.
func (h *Handler) EscalateCase(w http.ResponseWriter, r *http.Request) {
	var req escalateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	escalated, err := h.cases.Escalate(r.Context(), chi.URLParam(r, "caseID"), req.Reason)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, escalated)
}

// OfferPreview handles GET /payments/offer-preview?user_id=&product_id=.
func (h *Handler) OfferPreview(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	productID := r.URL.Query().Get("product_id")
	if userID == "" || productID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id and product_id are required")
		return
	}

	preview, err := h.payments.OfferPreview(r.Context(), userID, productID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, preview)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Diagnose handles GET /diagnostics.
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.diag.Run(r.Context()))
}
