package offers

import (
	"agent-orchestrator/internal/common/logger"
)

// MaxOffers bounds the number of offers attached to any response.
const MaxOffers = 2

// UserProfile carries the minimal user facts consulted by eligibility rules.
type UserProfile struct {
	Segments []string
	Balance  float64
	Products []string
}

// HasSegment reports membership in the profile's segment set.
func (p UserProfile) HasSegment(segment string) bool {
	for _, s := range p.Segments {
		if s == segment {
			return true
		}
	}
	return false
}

// EvalContext is accepted for future rule extension (persona-aware offers,
// tool-context-aware offers). The baseline rule set does not consult it.
type EvalContext struct {
	PersonaID   string
	ToolContext map[string]interface{}
}

// Engine evaluates the static catalog against a user profile. The policy is
// deliberately simple and auditable: catalog order, first two eligible items.
type Engine struct {
	catalog *Catalog
	logger  logger.Logger
}

func NewEngine(catalog *Catalog, log logger.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"component": "offer-engine"}),
	}
}

// Evaluate returns the eligible catalog items in declaration order, truncated
// to MaxOffers. An item is eligible when its required-segment set is empty or
// intersects the profile's segments, and the balance meets the minimum.
func (e *Engine) Evaluate(profile UserProfile, evalCtx EvalContext) []CatalogItem {
	out := make([]CatalogItem, 0, MaxOffers)
	for _, item := range e.catalog.Items() {
		if !eligible(item, profile) {
			continue
		}
		out = append(out, item)
		if len(out) == MaxOffers {
			break
		}
	}

	e.logger.Debug("offers evaluated", map[string]interface{}{
		"persona":  evalCtx.PersonaID,
		"segments": profile.Segments,
		"matched":  len(out),
	})
	return out
}

func eligible(item CatalogItem, profile UserProfile) bool {
	if len(item.Rules.RequireSegments) > 0 {
		matched := false
		for _, seg := range item.Rules.RequireSegments {
			if profile.HasSegment(seg) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if item.Rules.MinBalance != nil && profile.Balance < *item.Rules.MinBalance {
		return false
	}

	return true
}
