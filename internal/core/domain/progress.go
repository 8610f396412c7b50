package domain

import "time"

// ProgressSnapshot is an ephemeral view of a running sync pass.
// Snapshots are recomputed on every fetched batch and at step boundaries,
// delivered to subscribers, and discarded once the pass ends. They are
// never persisted.
type ProgressSnapshot struct {
	// OwnerID identifies the retailer being synchronised.
	OwnerID string

	// CurrentStep is the resource type currently being synchronised.
	CurrentStep ResourceType

	// StepIndex is the zero-based index of the current step.
	StepIndex int

	// TotalSteps is the number of steps in the pass.
	TotalSteps int

	// StepProgress is the current step's completion in percent (0-100).
	StepProgress float64

	// OverallProgress is the whole pass's completion in percent (0-100).
	OverallProgress float64

	// ItemsProcessed is the number of items fetched in the current step.
	ItemsProcessed int

	// EstimatedTotalItems is the expected item count for the current step.
	// Derived from the source's reported total when one was given, bounded
	// by the step's item budget; zero when unknown.
	EstimatedTotalItems int

	// Elapsed is the time since the pass started.
	Elapsed time.Duration

	// EstimatedRemaining is a linear extrapolation from Elapsed and
	// OverallProgress. Zero while OverallProgress is zero.
	EstimatedRemaining time.Duration

	// Message is a human-readable status line.
	Message string

	// Done reports whether the pass has finished (successfully or not).
	Done bool

	// Err holds the pass-level failure, if any, once Done.
	Err error
}
