package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agent-orchestrator/internal/common/logger"
)

// Case lifecycle statuses.
const (
	CaseStatusOpen       = "open"
	CaseStatusInProgress = "in_progress"
	CaseStatusEscalated  = "escalated"
)

// Case is one support case.
type Case struct {
	CaseID              string       `json:"case_id"`
	UserID              string       `json:"user_id"`
	Type                string       `json:"type"`
	Description         string       `json:"description"`
	Priority            string       `json:"priority"`
	Status              string       `json:"status"`
	CreatedAt           time.Time    `json:"created_at"`
	AssignedTo          string       `json:"assigned_to"`
	EstimatedResolution string       `json:"estimated_resolution"`
	Updates             []CaseUpdate `json:"updates,omitempty"`
}

// CaseUpdate is one timeline entry on a case.
type CaseUpdate struct {
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// CaseManager creates and tracks support cases.
type CaseManager interface {
	Create(ctx context.Context, userID, caseType, description, priority string) (*Case, error)
	Status(ctx context.Context, caseID string) (*Case, error)
	Escalate(ctx context.Context, caseID, reason string) (*Case, error)
}

// EscalationNotifier is told when a case moves to senior support. Delivery is
// best effort; failures never block the escalation itself.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, caseID, reason string) error
}

// MemoryCaseManager keeps cases in process memory.
type MemoryCaseManager struct {
	mu       sync.RWMutex
	cases    map[string]*Case
	notifier EscalationNotifier
	logger   logger.Logger
	now      func() time.Time
}

func NewMemoryCaseManager(notifier EscalationNotifier, log logger.Logger) *MemoryCaseManager {
	return &MemoryCaseManager{
		cases:    map[string]*Case{},
		notifier: notifier,
		logger:   log,
		now:      time.Now,
	}
}

func (m *MemoryCaseManager) Create(_ context.Context, userID, caseType, description, priority string) (*Case, error) {
	if priority == "" {
		priority = "medium"
	}
	resolution := "3-5 business days"
	if priority == "high" {
		resolution = "24-48 hours"
	}

	c := &Case{
		CaseID:              "CASE-" + strings.ToUpper(uuid.NewString()[:8]),
		UserID:              userID,
		Type:                caseType,
		Description:         description,
		Priority:            priority,
		Status:              CaseStatusOpen,
		CreatedAt:           m.now(),
		AssignedTo:          "support_team",
		EstimatedResolution: resolution,
	}

	m.mu.Lock()
	m.cases[c.CaseID] = c
	m.mu.Unlock()

	m.logger.Info("Support case created", map[string]interface{}{
		"caseId":   c.CaseID,
		"userId":   userID,
		"priority": priority,
	})
	copied := *c
	return &copied, nil
}

func (m *MemoryCaseManager) Status(_ context.Context, caseID string) (*Case, error) {
	m.mu.RLock()
	c, ok := m.cases[caseID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("case %s not found", caseID)
	}
	copied := *c
	copied.Updates = append([]CaseUpdate(nil), c.Updates...)
	return &copied, nil
}

func (m *MemoryCaseManager) Escalate(ctx context.Context, caseID, reason string) (*Case, error) {
	m.mu.Lock()
	c, ok := m.cases[caseID]
	if ok {
		c.Status = CaseStatusEscalated
		c.Priority = "high"
		c.AssignedTo = "senior_support"
		c.Updates = append(c.Updates, CaseUpdate{Timestamp: m.now(), Note: "Escalated: " + reason})
	}
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("case %s not found", caseID)
	}

	if m.notifier != nil {
		if err := m.notifier.NotifyEscalation(ctx, caseID, reason); err != nil {
			m.logger.Warn("Escalation notification failed", map[string]interface{}{
				"caseId": caseID,
				"error":  err.Error(),
			})
		}
	}

	copied := *c
	copied.Updates = append([]CaseUpdate(nil), c.Updates...)
	return &copied, nil
}
