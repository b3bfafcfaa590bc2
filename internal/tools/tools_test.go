package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/transactions"
)

func TestMockCRMLookupByIDAndEmail(t *testing.T) {
	crm := NewMockCRM()

	for _, identifier := range []string{"C001", "john.doe@email.com"} {
		res, err := crm.Lookup(context.Background(), identifier)
		require.NoError(t, err)
		require.True(t, res.Found)
		assert.Equal(t, "C001", res.Customer.CustomerID)
		assert.Equal(t, "John Doe", res.Customer.Name)
		assert.Equal(t, "premium", res.Customer.Segment)
		assert.Equal(t, 12500.50, res.Customer.Balance)
		assert.Equal(t, "John", res.Customer.FirstName())
	}
}

func TestMockCRMLookupMiss(t *testing.T) {
	crm := NewMockCRM()

	res, err := crm.Lookup(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Customer)
	assert.Equal(t, []string{"verify_identifier", "check_spelling", "search_by_phone"}, res.SuggestedActions)
}

func TestMockKYCVerifyApproved(t *testing.T) {
	kyc := NewMockKYC()

	res, err := kyc.Verify(context.Background(), "C001", []string{"passport_scan.pdf", "utility_bill_march.pdf"})
	require.NoError(t, err)
	assert.Equal(t, KYCStatusApproved, res.OverallStatus)
	assert.Equal(t, "low", res.RiskLevel)
	require.Len(t, res.Documents, 2)
	for _, doc := range res.Documents {
		assert.Equal(t, DocStatusVerified, doc.Status)
		assert.Equal(t, 0.95, doc.Confidence)
		assert.NotNil(t, doc.ExtractedData)
	}
}

func TestMockKYCVerifyUnknownDocPending(t *testing.T) {
	kyc := NewMockKYC()

	res, err := kyc.Verify(context.Background(), "C001", []string{"passport_scan.pdf", "selfie.jpg"})
	require.NoError(t, err)
	assert.Equal(t, KYCStatusPending, res.OverallStatus)
	assert.Equal(t, "medium", res.RiskLevel)
	assert.Equal(t, DocStatusNeedsReview, res.Documents[1].Status)
	assert.Nil(t, res.Documents[1].ExtractedData)
}

type stubTxSource struct {
	records []transactions.Transaction
	err     error
}

func (s *stubTxSource) Recent(context.Context, string, int) ([]transactions.Transaction, error) {
	return s.records, s.err
}

func TestBudgetAnalyzerSummarizesLedger(t *testing.T) {
	source := &stubTxSource{records: []transactions.Transaction{
		{Amount: 2800, Category: "Income", Date: time.Now()},
		{Amount: -120.50, Category: "Groceries", Date: time.Now()},
		{Amount: -80.25, Category: "Groceries", Date: time.Now()},
		{Amount: -60, Category: "Gas", Date: time.Now()},
	}}
	analyzer := NewBudgetAnalyzer(source, logger.NewTestLogger(t))

	insights, err := analyzer.Analyze(context.Background(), "C001", 30)
	require.NoError(t, err)
	assert.False(t, insights.Degraded)
	assert.Equal(t, 2800.0, insights.TotalIncome)
	assert.InDelta(t, 260.75, insights.TotalSpend, 0.001)
	assert.Equal(t, "Groceries", insights.TopCategory)
	assert.Contains(t, insights.Summary, "Groceries")
	assert.Contains(t, insights.Summary, "ahead")
}

func TestBudgetAnalyzerDegradesOnSourceFailure(t *testing.T) {
	analyzer := NewBudgetAnalyzer(&stubTxSource{err: assert.AnError}, logger.NewTestLogger(t))

	insights, err := analyzer.Analyze(context.Background(), "C001", 0)
	require.NoError(t, err, "source failures must not surface")
	assert.True(t, insights.Degraded)
	assert.NotEmpty(t, insights.Summary)
	assert.Equal(t, DefaultHorizonDays, insights.HorizonDays)
}

func TestBudgetAnalyzerEmptyLedger(t *testing.T) {
	analyzer := NewBudgetAnalyzer(&stubTxSource{}, logger.NewTestLogger(t))

	insights, err := analyzer.Analyze(context.Background(), "C777", 30)
	require.NoError(t, err)
	assert.False(t, insights.Degraded)
	assert.Contains(t, insights.Summary, "No transactions")
}

func TestMockAvatarSpeak(t *testing.T) {
	avatar := NewMockAvatar()

	media, err := avatar.Speak(context.Background(), "Hello there", "friendly")
	require.NoError(t, err)
	assert.Equal(t, "audio", media.Type)
	assert.Equal(t, "friendly", media.Voice)
	assert.Contains(t, media.URL, ".mp3")

	_, err = avatar.Speak(context.Background(), "", "friendly")
	assert.Error(t, err)
}

type recordingNotifier struct {
	caseIDs []string
	reasons []string
	err     error
}

func (r *recordingNotifier) NotifyEscalation(_ context.Context, caseID, reason string) error {
	r.caseIDs = append(r.caseIDs, caseID)
	r.reasons = append(r.reasons, reason)
	return r.err
}

func TestCaseManagerLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	mgr := NewMemoryCaseManager(notifier, logger.NewTestLogger(t))

	created, err := mgr.Create(context.Background(), "C001", "dispute", "Unrecognized charge", "high")
	require.NoError(t, err)
	assert.Regexp(t, `^CASE-[0-9A-F-]{8}$`, created.CaseID)
	assert.Equal(t, CaseStatusOpen, created.Status)
	assert.Equal(t, "24-48 hours", created.EstimatedResolution)

	got, err := mgr.Status(context.Background(), created.CaseID)
	require.NoError(t, err)
	assert.Equal(t, created.CaseID, got.CaseID)

	escalated, err := mgr.Escalate(context.Background(), created.CaseID, "customer called twice")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusEscalated, escalated.Status)
	assert.Equal(t, "senior_support", escalated.AssignedTo)
	require.Len(t, escalated.Updates, 1)

	assert.Equal(t, []string{created.CaseID}, notifier.caseIDs)
}

func TestCaseManagerEscalateNotifierFailureIsBestEffort(t *testing.T) {
	mgr := NewMemoryCaseManager(&recordingNotifier{err: assert.AnError}, logger.NewTestLogger(t))

	created, err := mgr.Create(context.Background(), "C001", "inquiry", "Need help", "")
	require.NoError(t, err)
	assert.Equal(t, "medium", created.Priority)

	escalated, err := mgr.Escalate(context.Background(), created.CaseID, "stale")
	require.NoError(t, err, "notifier failure must not block escalation")
	assert.Equal(t, CaseStatusEscalated, escalated.Status)
}

func TestCaseManagerUnknownCase(t *testing.T) {
	mgr := NewMemoryCaseManager(nil, logger.NewTestLogger(t))

	_, err := mgr.Status(context.Background(), "CASE-MISSING1")
	assert.Error(t, err)
	_, err = mgr.Escalate(context.Background(), "CASE-MISSING1", "x")
	assert.Error(t, err)
}

func TestMockPaymentsOfferPreview(t *testing.T) {
	payments := NewMockPayments()

	preview, err := payments.OfferPreview(context.Background(), "C001", "auto_loan")
	require.NoError(t, err)
	assert.Equal(t, "pre_approved", preview.Eligibility)
	assert.Equal(t, 45000.0, preview.PersonalizedTerms.ApprovedAmount)
	assert.Equal(t, 4.2, preview.PersonalizedTerms.ApprovedRate)

	checking, err := payments.OfferPreview(context.Background(), "C001", "premium_checking")
	require.NoError(t, err)
	assert.Equal(t, "No fees for first 6 months", checking.PersonalizedTerms.SpecialPromotion)

	_, err = payments.OfferPreview(context.Background(), "C001", "yacht_loan")
	assert.Error(t, err)
}
