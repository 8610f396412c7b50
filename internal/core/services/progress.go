package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driving"
)

// ProgressReporter fans progress snapshots out to registered observers.
// It holds no sync state of its own: it is pure plumbing between the
// orchestrator and any subscriber (CLI, logger, test harness). Multiple
// subscribers and concurrent owner runs are safe; snapshots carry the
// owner ID so subscribers can filter.
type ProgressReporter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]driving.ProgressFunc
}

// NewProgressReporter creates an empty reporter.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{subs: make(map[int]driving.ProgressFunc)}
}

// Subscribe registers an observer and returns its cancel function.
func (r *ProgressReporter) Subscribe(fn driving.ProgressFunc) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Publish delivers a snapshot to every subscriber.
func (r *ProgressReporter) Publish(snap domain.ProgressSnapshot) {
	r.mu.RLock()
	fns := make([]driving.ProgressFunc, 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// stepFraction converts a processed/estimated pair into a 0..1 fraction.
// Unknown estimates yield zero; overshoot is clamped because the source's
// reported totals are not reliable.
func stepFraction(processed, estimated int) float64 {
	if estimated <= 0 {
		return 0
	}
	f := float64(processed) / float64(estimated)
	if f > 1 {
		return 1
	}
	return f
}

// overallPercent combines completed steps and the current step's fraction
// into a whole-pass percentage.
func overallPercent(completedSteps int, currentFraction float64, totalSteps int) float64 {
	if totalSteps <= 0 {
		return 0
	}
	pct := (float64(completedSteps) + currentFraction) / float64(totalSteps) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// estimateRemaining extrapolates time left linearly from elapsed time and
// overall percentage, clamped to zero when the percentage is zero.
func estimateRemaining(elapsed time.Duration, pct float64) time.Duration {
	if pct <= 0 {
		return 0
	}
	remaining := time.Duration(float64(elapsed) * (100 - pct) / pct)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// progressTracker accumulates the state needed to derive snapshots for
// one orchestration pass. It is owned by a single goroutine (the
// orchestrator run) and needs no locking.
type progressTracker struct {
	ownerID    string
	startedAt  time.Time
	totalSteps int

	stepIndex int
	current   domain.ResourceType
	processed int
	estimated int
	now       func() time.Time
}

func newProgressTracker(ownerID string, totalSteps int, now func() time.Time) *progressTracker {
	return &progressTracker{
		ownerID:    ownerID,
		startedAt:  now(),
		totalSteps: totalSteps,
		now:        now,
	}
}

// startStep resets per-step counters for the next resource type.
func (t *progressTracker) startStep(index int, resource domain.ResourceType, budget int) {
	t.stepIndex = index
	t.current = resource
	t.processed = 0
	t.estimated = budget
}

// update records a fetched batch. A positive reported total narrows the
// step estimate, bounded by the step's item budget.
func (t *progressTracker) update(fetched, reportedTotal, budget int) {
	t.processed = fetched
	if reportedTotal > 0 && reportedTotal < budget {
		t.estimated = reportedTotal
	} else {
		t.estimated = budget
	}
}

// snapshot derives a ProgressSnapshot for the current instant.
func (t *progressTracker) snapshot(message string, stepDone bool) domain.ProgressSnapshot {
	frac := stepFraction(t.processed, t.estimated)
	if stepDone {
		frac = 1
	}
	completed := t.stepIndex
	pct := overallPercent(completed, frac, t.totalSteps)
	elapsed := t.now().Sub(t.startedAt)

	return domain.ProgressSnapshot{
		OwnerID:             t.ownerID,
		CurrentStep:         t.current,
		StepIndex:           t.stepIndex,
		TotalSteps:          t.totalSteps,
		StepProgress:        frac * 100,
		OverallProgress:     pct,
		ItemsProcessed:      t.processed,
		EstimatedTotalItems: t.estimated,
		Elapsed:             elapsed,
		EstimatedRemaining:  estimateRemaining(elapsed, pct),
		Message:             message,
	}
}

// finished derives the terminal snapshot for the pass.
func (t *progressTracker) finished(err error) domain.ProgressSnapshot {
	elapsed := t.now().Sub(t.startedAt)
	msg := "sync complete"
	pct := 100.0
	if err != nil {
		msg = fmt.Sprintf("sync failed: %v", err)
		pct = overallPercent(t.stepIndex, stepFraction(t.processed, t.estimated), t.totalSteps)
	}
	return domain.ProgressSnapshot{
		OwnerID:         t.ownerID,
		CurrentStep:     t.current,
		StepIndex:       t.stepIndex,
		TotalSteps:      t.totalSteps,
		StepProgress:    100,
		OverallProgress: pct,
		ItemsProcessed:  t.processed,
		Elapsed:         elapsed,
		Message:         msg,
		Done:            true,
		Err:             err,
	}
}
