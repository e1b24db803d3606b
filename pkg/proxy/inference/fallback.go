package inference

import (
	"context"
	"fmt"
	"log/slog"
)

// Caller runs a possibly retried inference against one endpoint.
type Caller interface {
	CallWithRetry(ctx context.Context, endpoint Endpoint, payload Payload) Outcome
}

// Orchestrator tries the primary endpoint, then the fallback once. There is
// no memory across requests: the primary is always attempted first.
type Orchestrator struct {
	caller   Caller
	primary  Endpoint
	fallback Endpoint
}

func NewOrchestrator(caller Caller, primary, fallback Endpoint) *Orchestrator {
	return &Orchestrator{
		caller:   caller,
		primary:  primary,
		fallback: fallback,
	}
}

func (o *Orchestrator) Primary() Endpoint {
	return o.primary
}

func (o *Orchestrator) Fallback() Endpoint {
	return o.fallback
}

func (o *Orchestrator) Generate(ctx context.Context, payload Payload) Outcome {
	primaryOutcome := o.caller.CallWithRetry(ctx, o.primary, payload)
	if primaryOutcome.IsSuccess() {
		primaryOutcome.Model = o.primary.Name
		return primaryOutcome
	}

	slog.Warn("primary model failed, trying fallback",
		"primary", o.primary.Name,
		"fallback", o.fallback.Name,
		"error", primaryOutcome.describe(),
	)

	fallbackOutcome := o.caller.CallWithRetry(ctx, o.fallback, payload)
	if fallbackOutcome.IsSuccess() {
		fallbackOutcome.Model = o.fallback.Name
		return fallbackOutcome
	}

	slog.Error("fallback model failed",
		"fallback", o.fallback.Name,
		"error", fallbackOutcome.describe(),
	)

	// upstream error bodies stay in the log lines above, not in the client message
	outcome := Fatal(fmt.Sprintf("primary model %s and fallback model %s both failed", o.primary.Name, o.fallback.Name))
	outcome.Unavailable = true
	return outcome
}
