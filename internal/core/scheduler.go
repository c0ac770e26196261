package core

// scheduler.go runs the background sweep that drops idle display sessions.
//
// The sweeper is long-running and context-aware for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionSweeper removes expired sessions once at start, then every
// SweepInterval until ctx is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context) {
	interval := s.cfg.Session.SweepInterval
	slog.Info("session sweeper started",
		"interval", interval,
		"ttl", s.cfg.Session.TTL,
	)

	s.runSweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Service) runSweep() {
	start := time.Now()
	removed := s.Sweep()
	if removed == 0 {
		slog.Debug("session sweep found nothing to remove")
		return
	}
	slog.Info("expired sessions removed",
		"removed", removed,
		"remaining", s.SessionCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
