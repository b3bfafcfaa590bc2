package api

import (
	"context"
	"time"

	"agent-orchestrator/internal/common/logger"
)

// Pinger is a dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a bare function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// CheckResult is one dependency's diagnostic outcome.
type CheckResult struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Diagnostics runs per-dependency health checks with a bounded timeout each.
type Diagnostics struct {
	checks   map[string]Pinger
	provider string
	timeout  time.Duration
	logger   logger.Logger
}

func NewDiagnostics(embeddingProvider string, log logger.Logger) *Diagnostics {
	return &Diagnostics{
		checks:   map[string]Pinger{},
		provider: embeddingProvider,
		timeout:  3 * time.Second,
		logger:   log,
	}
}

// Register adds a named dependency check. Nil pingers are ignored so wiring
// can pass through optional clients unconditionally.
func (d *Diagnostics) Register(name string, p Pinger) {
	if p != nil {
		d.checks[name] = p
	}
}

// Run pings every registered dependency. Failures are reported, never
// propagated.
func (d *Diagnostics) Run(ctx context.Context) map[string]CheckResult {
	results := make(map[string]CheckResult, len(d.checks)+1)

	for name, p := range d.checks {
		checkCtx, cancel := context.WithTimeout(ctx, d.timeout)
		if err := p.Ping(checkCtx); err != nil {
			results[name] = CheckResult{OK: false, Error: err.Error()}
			d.logger.Warn("Dependency check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
		} else {
			results[name] = CheckResult{OK: true}
		}
		cancel()
	}

	// The hash provider has no remote dependency to probe, so the embedding
	// check only reports which provider is configured.
	results["embedding"] = CheckResult{OK: true, Provider: d.provider}
	return results
}
