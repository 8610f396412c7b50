package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

func TestProgressReporter_SubscribeAndCancel(t *testing.T) {
	reporter := NewProgressReporter()

	var got1, got2 int
	cancel1 := reporter.Subscribe(func(domain.ProgressSnapshot) { got1++ })
	cancel2 := reporter.Subscribe(func(domain.ProgressSnapshot) { got2++ })

	reporter.Publish(domain.ProgressSnapshot{})
	assert.Equal(t, 1, got1)
	assert.Equal(t, 1, got2)

	cancel1()
	reporter.Publish(domain.ProgressSnapshot{})
	assert.Equal(t, 1, got1)
	assert.Equal(t, 2, got2)

	cancel2()
	reporter.Publish(domain.ProgressSnapshot{})
	assert.Equal(t, 2, got2)
}

func TestStepFraction(t *testing.T) {
	assert.Equal(t, 0.0, stepFraction(10, 0))
	assert.Equal(t, 0.5, stepFraction(10, 20))
	// Overshoot clamps: reported totals are unreliable
	assert.Equal(t, 1.0, stepFraction(30, 20))
}

func TestOverallPercent(t *testing.T) {
	assert.Equal(t, 0.0, overallPercent(0, 0, 0))
	assert.Equal(t, 25.0, overallPercent(1, 0, 4))
	assert.Equal(t, 37.5, overallPercent(1, 0.5, 4))
	assert.Equal(t, 100.0, overallPercent(4, 0, 4))
	assert.Equal(t, 100.0, overallPercent(5, 1, 4))
}

func TestEstimateRemaining(t *testing.T) {
	assert.Equal(t, time.Duration(0), estimateRemaining(time.Minute, 0))
	assert.Equal(t, time.Minute, estimateRemaining(time.Minute, 50))
	assert.Equal(t, 3*time.Minute, estimateRemaining(time.Minute, 25))
	assert.Equal(t, time.Duration(0), estimateRemaining(time.Minute, 100))
}

func TestProgressTracker_Snapshots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tracker := newProgressTracker("shop1", 4, clock)
	tracker.startStep(0, domain.ResourceProducts, 1000)

	snap := tracker.snapshot("syncing products", false)
	assert.Equal(t, "shop1", snap.OwnerID)
	assert.Equal(t, domain.ResourceProducts, snap.CurrentStep)
	assert.Equal(t, 0.0, snap.StepProgress)
	assert.False(t, snap.Done)

	// A reported total below the budget narrows the estimate
	now = now.Add(5 * time.Second)
	tracker.update(40, 80, 1000)
	snap = tracker.snapshot("syncing products", false)
	assert.Equal(t, 40, snap.ItemsProcessed)
	assert.Equal(t, 80, snap.EstimatedTotalItems)
	assert.InDelta(t, 50, snap.StepProgress, 0.01)
	assert.InDelta(t, 12.5, snap.OverallProgress, 0.01)
	assert.Equal(t, 5*time.Second, snap.Elapsed)
	assert.Positive(t, snap.EstimatedRemaining)

	// A reported total above the budget is ignored in favour of the budget
	tracker.update(40, 5000, 1000)
	snap = tracker.snapshot("syncing products", false)
	assert.Equal(t, 1000, snap.EstimatedTotalItems)

	// Step completion pins the step at 100%
	snap = tracker.snapshot("products done", true)
	assert.InDelta(t, 100, snap.StepProgress, 0.01)
	assert.InDelta(t, 25, snap.OverallProgress, 0.01)
}

func TestProgressTracker_Finished(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := newProgressTracker("shop1", 4, func() time.Time { return now })
	tracker.startStep(3, domain.ResourceInvoices, 1000)

	snap := tracker.finished(nil)
	require.True(t, snap.Done)
	assert.NoError(t, snap.Err)
	assert.InDelta(t, 100, snap.OverallProgress, 0.01)

	failure := assert.AnError
	snap = tracker.finished(failure)
	require.True(t, snap.Done)
	assert.Equal(t, failure, snap.Err)
	assert.Less(t, snap.OverallProgress, 100.0)
}
