package core

// upload_limiter.go bounds the number of spreadsheets parsed at once.
//
// Parsing holds the whole workbook in memory, so uploads take a slot from a
// semaphore before reading the file. When all slots are occupied a request
// waits up to maxWait and then fails with ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/VendorGrid/internal/metrics"
)

// ErrTooManyUploads is returned when all parse slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

const (
	defaultMaxConcurrentUploads = 5
	defaultMaxWaitTime          = 30 * time.Second
)

// UploadLimiter controls concurrent spreadsheet parsing with a semaphore.
type UploadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration
	active    atomic.Int64
}

// NewUploadLimiter creates a limiter that allows at most maxConcurrent parses.
// Non-positive arguments fall back to 5 slots and a 30s wait.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWaitTime
	}

	return &UploadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a parse slot.
// The caller MUST call Release when parsing completes.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		metrics.UploadsActive.Inc()
		return nil
	case <-timer.C:
		return ErrTooManyUploads
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	metrics.UploadsActive.Dec()
	<-l.semaphore
}

// ActiveCount returns the number of parses in progress.
func (l *UploadLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no parse is in progress or ctx is done.
// Used during shutdown.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// UploadLimiterStatus is a snapshot of the limiter state.
type UploadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *UploadLimiter) Status() UploadLimiterStatus {
	return UploadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
