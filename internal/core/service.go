package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/VendorGrid/internal/config"
	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/metrics"
	"github.com/JonMunkholm/VendorGrid/internal/payload"
	"github.com/JonMunkholm/VendorGrid/internal/sheet"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

// Service handles registrations and owns the open display sessions.
type Service struct {
	cfg     *config.Config
	limiter *UploadLimiter
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service using cfg for limits and defaults.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		limiter:  NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Register validates a registration, parses its spreadsheet and returns the
// encoded payload for the display page.
//
// Field violations are returned together as vendor.ValidationErrors. A file
// that cannot be read at all is returned as its own error; an empty file is
// reported as the uploadedData field violation.
func (s *Service) Register(ctx context.Context, in RegistrationInput) (string, error) {
	log := logging.WithFields(ctx,
		"file", in.FileName,
		"client_ip", IPAddressFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	rows, err := s.readUpload(ctx, in)
	if err != nil && !errors.Is(err, sheet.ErrEmptySheet) && !errors.Is(err, ErrNoFile) {
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusError).Inc()
		log.Warn("upload rejected", "error", err)
		return "", err
	}

	subject, err := in.Form.Validate(len(rows) > 0)
	if err != nil {
		if es, ok := vendor.AsValidationErrors(err); ok {
			for _, e := range es {
				metrics.RecordValidationFailure("registration", e.Field)
			}
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return "", err
	}

	p := payload.Payload{
		FullName:    subject.FullName,
		Email:       subject.Email,
		PhoneNumber: subject.PhoneNumber,
		DOB:         vendor.FormatDate(subject.DOB),
	}
	if err := p.SetTable(rows); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", err
	}

	token, err := payload.Encode(p)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", err
	}
	if limit := s.cfg.Upload.MaxPayloadBytes; len(token) > limit {
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		log.Warn("vendor link too long", "bytes", len(token), "limit", limit, "rows", len(rows))
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, len(token), limit)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.StatusOK).Inc()
	log.Info("vendor registered", "email", subject.Email, "rows", len(rows))
	return token, nil
}

// readUpload reads and parses the spreadsheet under a parse slot.
func (s *Service) readUpload(ctx context.Context, in RegistrationInput) ([][]string, error) {
	if in.File == nil {
		return nil, ErrNoFile
	}

	maxSize := s.cfg.Upload.MaxFileSize
	if in.Size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, in.Size, maxSize)
	}

	format, err := sheet.DetectFormat(in.FileName)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	data, err := io.ReadAll(io.LimitReader(in.File, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, maxSize)
	}

	start := time.Now()
	rows, err := sheet.Parse(in.FileName, bytes.NewReader(data))
	metrics.RecordSheetParse(string(format), max(len(rows)-1, 0), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Open decodes a payload token and starts a display session for it.
func (s *Service) Open(ctx context.Context, token string) (*Session, error) {
	p, err := payload.Decode(token)
	if err != nil {
		return nil, err
	}

	subject, err := vendor.Input{
		FullName:    p.FullName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		DOB:         p.DOB,
	}.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payload.ErrInvalidPayload, err)
	}

	header, rows, err := p.Table()
	if err != nil {
		return nil, err
	}
	g := grid.FromTable(header, rows, s.cfg.Grid.DefaultPageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.Session.Max {
		return nil, ErrTooManySessions
	}

	sess := newSession(uuid.NewString(), subject, g, s.now)
	s.sessions[sess.ID] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))

	logging.WithFields(ctx, "session_id", sess.ID).Info("session opened",
		"records", g.Len(),
		"columns", len(g.Keys()),
	)
	return sess, nil
}

// Session returns the open session with the given ID.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.expired(s.now(), s.cfg.Session.TTL) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CloseSession removes a session. Closing an unknown ID is a no-op.
func (s *Service) CloseSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
}

// SessionCount returns the number of sessions held.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle longer than the configured TTL and returns
// how many were removed.
func (s *Service) Sweep() int {
	now := s.now()
	ttl := s.cfg.Session.TTL

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.expired(now, ttl) {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.SessionsExpired.Add(float64(removed))
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return removed
}

// ServiceStatus is a snapshot of the service for the health endpoint.
type ServiceStatus struct {
	Sessions int                 `json:"sessions"`
	Uploads  UploadLimiterStatus `json:"uploads"`
}

// Status returns the current session count and parse limiter state.
func (s *Service) Status() ServiceStatus {
	return ServiceStatus{
		Sessions: s.SessionCount(),
		Uploads:  s.limiter.Status(),
	}
}

// WaitForParses blocks until in-flight spreadsheet parses finish.
func (s *Service) WaitForParses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
