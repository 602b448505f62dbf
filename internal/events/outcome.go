package events

// Outcome is a handler's verdict on a delivered envelope.
//
// Delivery is at-least-once, so the verdict controls acknowledgement:
// OutcomeSuccess and OutcomeDrop both acknowledge the delivery (a dropped
// envelope is unprocessable and redelivering it cannot help), while
// OutcomeRetry leaves it unacknowledged for redelivery.
type Outcome int

const (
	// OutcomeSuccess means the envelope was processed.
	OutcomeSuccess Outcome = iota

	// OutcomeDrop means the envelope is malformed or not actionable and
	// must be acknowledged without processing.
	OutcomeDrop

	// OutcomeRetry means processing hit a transient failure and the
	// delivery should be attempted again.
	OutcomeRetry
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDrop:
		return "drop"
	case OutcomeRetry:
		return "retry"
	}
	return "unknown"
}
