package rowmutation

// footprint_tracker.go implements FootprintTracker.
//
// FootprintTracker accumulates the estimated footprint of mutations a client
// is holding and tells it when to flush. It does no batching itself.

import (
	"sync"
	"sync/atomic"

	"github.com/aalhour/rowmutation/internal/logging"
)

// FootprintTracker sums the footprints of pending mutations against a flush
// threshold. It is safe for concurrent use and may be shared by several
// writers.
type FootprintTracker struct {
	threshold  uint64
	model      CostModel
	maxColumns int
	logger     Logger

	// Pending footprint.
	used atomic.Uint64

	// Set while usage is at or above the threshold, so crossings are logged
	// once.
	over atomic.Bool

	stats TrackerStats
	mu    sync.Mutex
}

// TrackerStats reports tracker activity.
type TrackerStats struct {
	Mutations     uint64 // Mutations added
	TotalAdded    uint64 // Bytes added
	TotalReleased uint64 // Bytes released
	PeakUsage     uint64 // Highest pending footprint
	FlushTriggers uint64 // Times the threshold was crossed
}

// NewFootprintTracker creates a tracker from opts. A nil opts uses
// DefaultOptions. Options that fail Validate are rejected with
// ErrInvalidArgument.
//
// Example:
//
//	tr, err := NewFootprintTracker(DefaultOptions())
//	if err != nil {
//		return err
//	}
//	tr.Add(put)
//	if tr.ShouldFlush() {
//		send(pending)
//		tr.Reset()
//	}
func NewFootprintTracker(opts *Options) (*FootprintTracker, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &FootprintTracker{
		threshold:  opts.FlushThreshold,
		model:      opts.CostModel,
		maxColumns: opts.MaxSummaryColumns,
		logger:     logging.OrDefault(opts.Logger),
	}, nil
}

// Enabled returns true if a flush threshold is configured.
func (t *FootprintTracker) Enabled() bool {
	return t.threshold > 0
}

// Threshold returns the configured flush threshold.
func (t *FootprintTracker) Threshold() uint64 {
	return t.threshold
}

// Usage returns the pending footprint.
func (t *FootprintTracker) Usage() uint64 {
	return t.used.Load()
}

// Add estimates m under the tracker's cost model, adds it to the pending
// footprint and returns the estimate.
func (t *FootprintTracker) Add(m *Mutation) uint64 {
	n := uint64(m.EstimateFootprintWith(t.model))
	newUsed := t.reserve(n, 1)
	if t.crossed(newUsed) {
		t.logger.Infof("%sflush threshold %d reached at %d bytes", logging.NSTracker, t.threshold, newUsed)
		t.logger.Debugf("%slast mutation: %s", logging.NSTracker, t.describe(m))
	}
	return n
}

// AddBytes adds n bytes not tied to a mutation.
func (t *FootprintTracker) AddBytes(n uint64) {
	newUsed := t.reserve(n, 0)
	if t.crossed(newUsed) {
		t.logger.Infof("%sflush threshold %d reached at %d bytes", logging.NSTracker, t.threshold, newUsed)
	}
}

func (t *FootprintTracker) reserve(n, mutations uint64) uint64 {
	newUsed := t.used.Add(n)

	t.mu.Lock()
	t.stats.Mutations += mutations
	t.stats.TotalAdded += n
	if newUsed > t.stats.PeakUsage {
		t.stats.PeakUsage = newUsed
	}
	t.mu.Unlock()
	return newUsed
}

// crossed reports whether usage has just reached the threshold.
func (t *FootprintTracker) crossed(usage uint64) bool {
	if !t.Enabled() || usage < t.threshold {
		return false
	}
	if !t.over.CompareAndSwap(false, true) {
		return false
	}
	t.mu.Lock()
	t.stats.FlushTriggers++
	t.mu.Unlock()
	return true
}

func (t *FootprintTracker) describe(m *Mutation) string {
	b, err := m.SummaryJSON(t.maxColumns)
	if err != nil {
		return m.kind.String()
	}
	return string(b)
}

// Release removes n bytes from the pending footprint, typically after the
// mutations they belong to were sent. Usage never drops below zero.
func (t *FootprintTracker) Release(n uint64) {
	var released uint64
	for {
		cur := t.used.Load()
		released = min(n, cur)
		if t.used.CompareAndSwap(cur, cur-released) {
			if cur-released < t.threshold {
				t.over.Store(false)
			}
			break
		}
	}

	t.mu.Lock()
	t.stats.TotalReleased += released
	t.mu.Unlock()
}

// ShouldFlush returns true when the pending footprint is at or above the
// threshold.
func (t *FootprintTracker) ShouldFlush() bool {
	if !t.Enabled() {
		return false
	}
	return t.used.Load() >= t.threshold
}

// Reset releases everything pending and returns how much that was.
func (t *FootprintTracker) Reset() uint64 {
	released := t.used.Swap(0)
	t.over.Store(false)

	t.mu.Lock()
	t.stats.TotalReleased += released
	t.mu.Unlock()

	t.logger.Debugf("%sreset, released %d bytes", logging.NSTracker, released)
	return released
}

// UsageRatio returns the pending footprint as a ratio of the threshold
// (0.0 to 1.0+).
func (t *FootprintTracker) UsageRatio() float64 {
	if !t.Enabled() {
		return 0
	}
	return float64(t.used.Load()) / float64(t.threshold)
}

// Stats returns a copy of the statistics.
func (t *FootprintTracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// ResetStats resets the statistics.
func (t *FootprintTracker) ResetStats() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = TrackerStats{}
}
