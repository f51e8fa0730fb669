package investigation

import "context"

// Provider is the interface for any LLM text-generation backend. Calls are
// long-latency; the Service never holds a lock across one.
type Provider interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Notifier receives best-effort notifications when an alert is escalated to
// a SAR filing. Failures are logged and never surfaced to the caller.
type Notifier interface {
	Send(ctx context.Context, a *Alert) error
}
