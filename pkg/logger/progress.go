package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs periodic progress for long row batches so large
// statement uploads are observable without logging every row.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mu          sync.Mutex
}

// ProgressConfig configures progress tracking behavior
type ProgressConfig struct {
	Operation   string
	Total       int64
	LogInterval time.Duration
	Logger      Logger
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(config ProgressConfig) *ProgressTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.LogInterval == 0 {
		config.LogInterval = 5 * time.Second
	}

	now := time.Now()
	tracker := &ProgressTracker{
		logger:      config.Logger.WithComponent("progress"),
		operation:   config.Operation,
		total:       config.Total,
		startTime:   now,
		lastLogTime: now,
		logInterval: config.LogInterval,
	}

	tracker.logger.WithFields(Fields{
		"operation": config.Operation,
		"total":     config.Total,
	}).Info("Starting operation")

	return tracker
}

// Increment advances the progress counter by 1.
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	if now := time.Now(); now.Sub(p.lastLogTime) >= p.logInterval {
		p.logProgress(now)
		p.lastLogTime = now
	}
}

// Finish logs a completion line with the final count and elapsed time.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond).String(),
	}).Info("Operation complete")
}

func (p *ProgressTracker) logProgress(now time.Time) {
	fields := Fields{
		"operation": p.operation,
		"processed": p.current,
		"elapsed":   now.Sub(p.startTime).Round(time.Millisecond).String(),
	}
	if p.total > 0 {
		fields["total"] = p.total
		fields["percent"] = float64(p.current) * 100 / float64(p.total)
	}
	p.logger.WithFields(fields).Info("Operation in progress")
}
