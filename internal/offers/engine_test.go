package offers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-orchestrator/internal/common/logger"
)

const testCatalog = `{
	"items": [
		{
			"id": "premium-savings",
			"name": "Premium Savings Boost",
			"copy": "Earn 4.5% on balances over $10k.",
			"cta": {"label": "Upgrade", "action": "open_savings"},
			"rules": {"requireSegments": ["premium"], "minBalance": 10000}
		},
		{
			"id": "starter-credit",
			"name": "Starter Credit Card",
			"copy": "Build credit with no annual fee.",
			"cta": {"label": "Apply", "action": "apply_credit"},
			"rules": {"requireSegments": ["newcomer"]}
		},
		{
			"id": "everyday-cashback",
			"name": "Everyday Cashback",
			"copy": "2% back on groceries.",
			"cta": {"label": "Learn more", "action": "open_offer"},
			"rules": {}
		},
		{
			"id": "wealth-advisory",
			"name": "Wealth Advisory Intro",
			"copy": "A complimentary session with an advisor.",
			"cta": {"label": "Book", "action": "book_advisor"},
			"rules": {"requireSegments": ["premium"], "minBalance": 50000}
		}
	]
}`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	return NewEngine(catalog, logger.NewTestLogger(t))
}

func TestEvaluatePremiumProfile(t *testing.T) {
	e := newTestEngine(t)
	profile := UserProfile{Segments: []string{"premium"}, Balance: 12500.50}

	got := e.Evaluate(profile, EvalContext{PersonaID: "teller-v1"})

	require.Len(t, got, 2)
	assert.Equal(t, "premium-savings", got[0].ID)
	assert.Equal(t, "everyday-cashback", got[1].ID)
}

func TestEvaluateNewcomerDefaults(t *testing.T) {
	e := newTestEngine(t)
	profile := UserProfile{Segments: []string{"newcomer"}, Balance: 250}

	got := e.Evaluate(profile, EvalContext{})

	require.Len(t, got, 2)
	assert.Equal(t, "starter-credit", got[0].ID)
	assert.Equal(t, "everyday-cashback", got[1].ID)
}

func TestEvaluateBalanceGate(t *testing.T) {
	e := newTestEngine(t)
	// Premium segment but below the minimum balance for premium-savings.
	profile := UserProfile{Segments: []string{"premium"}, Balance: 500}

	got := e.Evaluate(profile, EvalContext{})

	require.Len(t, got, 1)
	assert.Equal(t, "everyday-cashback", got[0].ID)
}

func TestEvaluateDeterministic(t *testing.T) {
	e := newTestEngine(t)
	profile := UserProfile{Segments: []string{"premium"}, Balance: 100000}

	first := e.Evaluate(profile, EvalContext{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Evaluate(profile, EvalContext{}))
	}
}

func TestEvaluateBoundAndSelfConsistency(t *testing.T) {
	e := newTestEngine(t)
	profiles := []UserProfile{
		{Segments: []string{"premium"}, Balance: 100000},
		{Segments: []string{"newcomer"}, Balance: 0},
		{Segments: nil, Balance: 1e9},
		{Segments: []string{"unknown-segment"}, Balance: 0},
	}

	for _, profile := range profiles {
		got := e.Evaluate(profile, EvalContext{})
		assert.LessOrEqual(t, len(got), MaxOffers)
		for _, item := range got {
			assert.True(t, eligible(item, profile), "returned item %s must satisfy its own rule", item.ID)
		}
	}
}

func TestCatalogReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items": []}`), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Empty(t, catalog.Items())

	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	require.NoError(t, catalog.Reload())
	assert.Len(t, catalog.Items(), 4)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
