package eventmodels

import "fmt"

// Kind identifies one of the error categories from spec §7. Each stage
// picks its handling strategy (dead-letter, fallback, circuit-break,
// retry, or fatal exit) by switching on Kind rather than string-matching
// error text.
type Kind int

const (
	// KindSchema indicates a schema_version mismatch or structurally
	// invalid record. Handling: dead-letter, never silently coerced.
	KindSchema Kind = iota
	// KindBusTransient indicates a publish/subscribe failure expected to
	// clear. Handling: retry with exponential backoff up to 5 attempts,
	// then dead-letter.
	KindBusTransient
	// KindDependencyTimeout indicates a single call exceeded its budget.
	// Handling: use fallback, increment a counter, never block the loop.
	KindDependencyTimeout
	// KindDependencyUnavailable indicates repeated failures against a
	// collaborator. Handling: circuit-break for 30s, use fallback.
	KindDependencyUnavailable
	// KindInvariantViolation indicates a record broke an invariant from
	// spec §8 (e.g. zero evidence, empty ship_id). Handling: log,
	// dead-letter, counter — never silently coerced.
	KindInvariantViolation
	// KindFatalStartup indicates a collaborator is unavailable at
	// startup after the retry budget is exhausted. Handling: exit 2.
	KindFatalStartup
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema_error"
	case KindBusTransient:
		return "bus_transient_error"
	case KindDependencyTimeout:
		return "dependency_timeout"
	case KindDependencyUnavailable:
		return "dependency_unavailable"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindFatalStartup:
		return "fatal_startup_error"
	default:
		return "unknown_error"
	}
}

// PipelineError wraps an error with a Kind and the tracking_id of the
// record it was raised for, so handlers can log and route without
// re-deriving context (spec §7: "every dropped or dead-lettered record
// is logged with its tracking_id and reason").
type PipelineError struct {
	Kind       Kind
	TrackingID string
	Reason     string
	Err        error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (tracking_id=%s): %v", e.Kind, e.Reason, e.TrackingID, e.Err)
	}
	return fmt.Sprintf("%s: %s (tracking_id=%s)", e.Kind, e.Reason, e.TrackingID)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewPipelineError constructs a PipelineError.
func NewPipelineError(kind Kind, trackingID, reason string, err error) *PipelineError {
	return &PipelineError{Kind: kind, TrackingID: trackingID, Reason: reason, Err: err}
}
