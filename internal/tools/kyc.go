package tools

import (
	"context"
	"strings"
)

// Verification statuses for the overall check and per-document results.
const (
	KYCStatusApproved = "approved"
	KYCStatusPending  = "pending"

	DocStatusVerified    = "verified"
	DocStatusNeedsReview = "needs_review"
)

var validDocTypes = []string{"passport", "drivers_license", "national_id", "utility_bill", "bank_statement"}

// DocumentResult is the validation outcome for one document reference.
type DocumentResult struct {
	Document      string            `json:"document"`
	Status        string            `json:"status"`
	Confidence    float64           `json:"confidence"`
	ExtractedData map[string]string `json:"extracted_data,omitempty"`
}

// VerificationResult aggregates per-document checks into an overall status.
type VerificationResult struct {
	UserID        string           `json:"user_id"`
	OverallStatus string           `json:"overall_status"`
	RiskLevel     string           `json:"risk_level"`
	Documents     []DocumentResult `json:"documents"`
	NextSteps     []string         `json:"next_steps"`
}

// IdentityVerifier validates identity documents for a user.
type IdentityVerifier interface {
	Verify(ctx context.Context, userID string, docRefs []string) (*VerificationResult, error)
}

// MockKYC validates document references by recognized type keywords. Any
// unrecognized document downgrades the overall status to pending.
type MockKYC struct{}

func NewMockKYC() *MockKYC {
	return &MockKYC{}
}

func (m *MockKYC) Verify(_ context.Context, userID string, docRefs []string) (*VerificationResult, error) {
	results := make([]DocumentResult, 0, len(docRefs))
	overall := KYCStatusApproved

	for _, ref := range docRefs {
		result := DocumentResult{Document: ref, Status: DocStatusNeedsReview, Confidence: 0.65}
		for _, docType := range validDocTypes {
			if strings.Contains(strings.ToLower(ref), docType) {
				result.Status = DocStatusVerified
				result.Confidence = 0.95
				result.ExtractedData = map[string]string{
					"name":          "John Doe",
					"date_of_birth": "1990-05-15",
					"address":       "123 Main St, City, State 12345",
				}
				break
			}
		}
		if result.Status == DocStatusNeedsReview {
			overall = KYCStatusPending
		}
		results = append(results, result)
	}

	verification := &VerificationResult{
		UserID:        userID,
		OverallStatus: overall,
		Documents:     results,
	}
	if overall == KYCStatusApproved {
		verification.RiskLevel = "low"
		verification.NextSteps = []string{
			"Identity verified successfully",
			"Account can be activated",
			"Welcome package will be sent",
		}
	} else {
		verification.RiskLevel = "medium"
		verification.NextSteps = []string{
			"Additional documentation required",
			"Manual review initiated",
			"Customer will be contacted within 24 hours",
		}
	}
	return verification, nil
}
