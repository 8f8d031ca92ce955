// internal/progress/reporter.go
package progress

import (
	"sync"
	"time"

	"github.com/peekapeak/peekctl/internal/logger"
)

// Reporter tracks and reports archive-export progress
type Reporter struct {
	mu             sync.Mutex
	total          int
	completed      int
	skipped        int
	errors         int
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter
func New() *Reporter {
	return &Reporter{
		updateInterval: 2 * time.Second,
	}
}

// Start initializes the reporter with the total number of photos
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.completed = 0
	r.skipped = 0
	r.errors = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Now()

	logger.Info("Starting export of %d photos", total)
}

// Complete marks a photo as successfully archived
func (r *Reporter) Complete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed++
	r.updateProgress()
}

// Skip marks a photo as skipped
func (r *Reporter) Skip(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped++
	r.updateProgress()
}

// Error marks a photo as failed
func (r *Reporter) Error(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors++
	r.updateProgress()
}

// Finish completes the progress reporting
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)

	logger.Info("Export complete: %d/%d photos archived, %d skipped, %d errors in %s",
		r.completed, r.total, r.skipped, r.errors, duration.Round(time.Second))
}

// Counts returns the current totals
func (r *Reporter) Counts() (completed, skipped, errors int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.skipped, r.errors
}

// updateProgress logs the running totals at a bounded rate; called with
// r.mu held
func (r *Reporter) updateProgress() {
	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}

	r.lastUpdateTime = now
	processed := r.completed + r.skipped + r.errors
	if processed == 0 || r.total == 0 {
		return
	}

	percentage := float64(processed) / float64(r.total) * 100
	logger.Info("Progress: %.1f%% (%d/%d, %d archived, %d skipped, %d errors)",
		percentage, processed, r.total, r.completed, r.skipped, r.errors)
}
