package orchestrator

// Capability is one named backing function a persona may enable. The set is
// closed: names outside it are ignored deterministically when they appear in
// a persona configuration.
type Capability string

const (
	CapabilityRetrieval Capability = "rag.search"
	CapabilityBudget    Capability = "budget.analyze"
	CapabilityCRM       Capability = "crm.lookup"
	CapabilityKYC       Capability = "kyc.verify"
	CapabilitySpeak     Capability = "avatar.speak"
)

// invocationOrder fixes the sequence capabilities run in. Speech synthesis is
// not listed: it runs after reply composition, never as a pipeline step.
var invocationOrder = []Capability{
	CapabilityRetrieval,
	CapabilityBudget,
	CapabilityCRM,
	CapabilityKYC,
}

var knownCapabilities = map[Capability]struct{}{
	CapabilityRetrieval: {},
	CapabilityBudget:    {},
	CapabilityCRM:       {},
	CapabilityKYC:       {},
	CapabilitySpeak:     {},
}

// Known reports whether name is part of the closed capability set.
func Known(name string) bool {
	_, ok := knownCapabilities[Capability(name)]
	return ok
}
