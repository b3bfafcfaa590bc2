package orchestrator

import (
	"context"
	"fmt"
	"time"

	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/common/metrics"
	"agent-orchestrator/internal/offers"
	"agent-orchestrator/internal/persona"
	"agent-orchestrator/internal/retrieval"
	"agent-orchestrator/internal/tools"
)

// defaultDocRefs are the standing documents identity verification checks
// when the pipeline triggers it for a newly-classified customer.
var defaultDocRefs = []string{"passport", "utility_bill"}

// PersonaLoader resolves a persona id to its configuration.
type PersonaLoader interface {
	Load(personaID string) (*persona.Persona, error)
}

// RetrievalSearcher is the similarity-search surface the pipeline calls.
// It never fails: unreachable backends degrade to stub chunks.
type RetrievalSearcher interface {
	Search(ctx context.Context, query string, namespaces []string, userID string, k int) retrieval.Result
}

// Dependencies wires the pipeline's collaborators. Registry, Offers and
// Logger are required; a nil tool simply means that capability never runs.
type Dependencies struct {
	Registry PersonaLoader
	Search   RetrievalSearcher
	Budget   tools.SpendingAnalyzer
	CRM      tools.CustomerDirectory
	KYC      tools.IdentityVerifier
	Avatar   tools.SpeechSynthesizer
	Offers   *offers.Engine
	Logger   logger.Logger
	TopK     int
}

// Pipeline sequences persona resolution, capability gating, tool invocation,
// reply composition and offer evaluation for one request. It is stateless
// across requests and safe for concurrent use.
type Pipeline struct {
	deps Dependencies
	topK int
}

func NewPipeline(deps Dependencies) (*Pipeline, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("pipeline requires a persona registry")
	}
	if deps.Offers == nil {
		return nil, fmt.Errorf("pipeline requires an offer engine")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("pipeline requires a logger")
	}
	topK := deps.TopK
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{deps: deps, topK: topK}, nil
}

// runState accumulates per-request tool output between pipeline steps.
type runState struct {
	query    string
	events   []ToolEvent
	toolCtx  map[string]interface{}
	chunks   []retrieval.Chunk
	ragRan   bool
	insights *tools.BudgetInsights
	customer *tools.Customer
}

// Orchestrate runs the full pipeline. Persona resolution is the only hard
// failure; every collaborator error after that degrades or skips.
func (p *Pipeline) Orchestrate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	pers, err := p.deps.Registry.Load(req.Persona)
	if err != nil {
		metrics.OrchestrationsTotal.WithLabelValues(req.Persona, "persona_error").Inc()
		return nil, err
	}
	p.warnUnknownCapabilities(pers)

	state := &runState{
		query:   lastUserText(req.Messages),
		toolCtx: map[string]interface{}{},
	}

	for _, capability := range invocationOrder {
		if !pers.Allows(string(capability)) {
			continue
		}
		p.invoke(ctx, capability, pers, req, state)
	}

	replyText := p.composeReply(pers, state)

	var media *tools.Media
	if pers.Allows(string(CapabilitySpeak)) && p.deps.Avatar != nil {
		media, err = p.deps.Avatar.Speak(ctx, replyText, pers.Voice.Tone)
		if err != nil {
			p.deps.Logger.Warn("Speech synthesis failed, omitting media", map[string]interface{}{
				"persona": pers.ID,
				"error":   err.Error(),
			})
			media = nil
		}
	}

	profile := p.buildProfile(state.customer)
	eligible := p.deps.Offers.Evaluate(profile, offers.EvalContext{
		PersonaID:   pers.ID,
		ToolContext: state.toolCtx,
	})
	offerViews := make([]Offer, 0, len(eligible))
	for _, item := range eligible {
		offerViews = append(offerViews, toOffer(item))
	}

	metrics.OffersReturned.Observe(float64(len(offerViews)))
	metrics.OrchestrationsTotal.WithLabelValues(pers.ID, "success").Inc()
	metrics.OrchestrationDuration.WithLabelValues(pers.ID).Observe(time.Since(start).Seconds())

	return &Response{
		Reply:      Reply{Text: replyText, Media: media},
		Offers:     offerViews,
		ToolEvents: state.events,
	}, nil
}

// invoke runs one gated capability. Collaborator failures are logged and
// treated as "did not run": no event, no error.
func (p *Pipeline) invoke(ctx context.Context, capability Capability, pers *persona.Persona, req Request, state *runState) {
	switch capability {
	case CapabilityRetrieval:
		if p.deps.Search == nil {
			return
		}
		result := p.deps.Search.Search(ctx, state.query, pers.RagNamespaces, req.UserID, p.topK)
		state.chunks = result.Chunks
		state.ragRan = true
		p.record(state, capability,
			map[string]interface{}{"query": state.query},
			map[string]interface{}{"count": len(result.Chunks)})

	case CapabilityBudget:
		if p.deps.Budget == nil {
			return
		}
		insights, err := p.deps.Budget.Analyze(ctx, req.UserID, tools.DefaultHorizonDays)
		if err != nil {
			p.skip(capability, pers.ID, err)
			return
		}
		state.insights = insights
		p.record(state, capability,
			map[string]interface{}{"user_id": req.UserID},
			map[string]interface{}{"summary": insights.Summary})

	case CapabilityCRM:
		if p.deps.CRM == nil {
			return
		}
		result, err := p.deps.CRM.Lookup(ctx, req.UserID)
		if err != nil {
			p.skip(capability, pers.ID, err)
			return
		}
		output := map[string]interface{}{"found": result.Found}
		if result.Found {
			state.customer = result.Customer
			output["segment"] = result.Customer.Segment
		}
		p.record(state, capability,
			map[string]interface{}{"identifier": req.UserID},
			output)

	case CapabilityKYC:
		if p.deps.KYC == nil {
			return
		}
		// Data-dependent gate: verification only runs for customers the
		// lookup classified as new.
		if state.customer == nil || state.customer.Segment != "new" {
			return
		}
		verification, err := p.deps.KYC.Verify(ctx, req.UserID, defaultDocRefs)
		if err != nil {
			p.skip(capability, pers.ID, err)
			return
		}
		p.record(state, capability,
			map[string]interface{}{"user_id": req.UserID},
			map[string]interface{}{"status": verification.OverallStatus})
	}
}

func (p *Pipeline) record(state *runState, capability Capability, input, output map[string]interface{}) {
	state.events = append(state.events, ToolEvent{
		Name:   string(capability),
		Input:  input,
		Output: output,
	})
	state.toolCtx[string(capability)] = output
	metrics.ToolInvocations.WithLabelValues(string(capability), "success").Inc()
}

func (p *Pipeline) skip(capability Capability, personaID string, err error) {
	metrics.ToolInvocations.WithLabelValues(string(capability), "error").Inc()
	p.deps.Logger.Warn("Capability failed, treating as not run", map[string]interface{}{
		"tool":    string(capability),
		"persona": personaID,
		"error":   err.Error(),
	})
}

// composeReply builds the reply text from whichever capabilities produced
// content, falling back to a generic prompt when none did.
func (p *Pipeline) composeReply(pers *persona.Persona, state *runState) string {
	text := fmt.Sprintf("[%s] ", pers.DisplayName)
	contentAdded := false

	if state.ragRan {
		text += fmt.Sprintf("I found %d relevant docs. ", len(state.chunks))
		contentAdded = true
	}
	if state.insights != nil {
		text += fmt.Sprintf("Budget outlook: %s. ", state.insights.Summary)
		contentAdded = true
	}
	if state.customer != nil {
		text += fmt.Sprintf("Good to see you, %s. ", state.customer.FirstName())
		contentAdded = true
	}
	if !contentAdded {
		text += "Ask me another question or choose an action."
	}
	return text
}

// buildProfile derives the offer-matching profile from the looked-up
// customer, or the documented defaults when lookup missed or did not run.
func (p *Pipeline) buildProfile(customer *tools.Customer) offers.UserProfile {
	if customer == nil {
		return offers.UserProfile{Segments: []string{"newcomer"}, Balance: 250}
	}
	return offers.UserProfile{
		Segments: []string{customer.Segment},
		Balance:  customer.Balance,
		Products: customer.Products,
	}
}

func (p *Pipeline) warnUnknownCapabilities(pers *persona.Persona) {
	for _, name := range pers.Tools {
		if !Known(name) {
			p.deps.Logger.Warn("Persona lists unknown capability, ignoring", map[string]interface{}{
				"persona": pers.ID,
				"tool":    name,
			})
		}
	}
}
