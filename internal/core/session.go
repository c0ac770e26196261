package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/metrics"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

// Session is one open vendor display page: a Subject and its data grid.
// All methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	subject  vendor.Subject
	grid     *grid.Grid
	lastSeen time.Time
	now      func() time.Time
}

func newSession(id string, subject vendor.Subject, g *grid.Grid, now func() time.Time) *Session {
	t := now()
	return &Session{
		ID:        id,
		CreatedAt: t,
		subject:   subject,
		grid:      g,
		lastSeen:  t,
		now:       now,
	}
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.lastSeen = s.now()
}

// Snapshot returns the current page and paging state.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.view()
}

func (s *Session) view() SessionView {
	rows := s.grid.Page()
	selected := 0
	for _, r := range rows {
		if r.Selected {
			selected++
		}
	}
	return SessionView{
		ID:            s.ID,
		Subject:       s.subject,
		Keys:          s.grid.Keys(),
		Rows:          rows,
		Offset:        s.grid.Offset(),
		CurrentPage:   s.grid.CurrentPage(),
		TotalPages:    s.grid.TotalPages(),
		PageSize:      s.grid.PageSize(),
		TotalRecords:  s.grid.Len(),
		SelectedCount: selected,
		HasPrev:       s.grid.HasPrev(),
		HasNext:       s.grid.HasNext(),
	}
}

// SetPageSize parses text as the new page size and returns to page 1.
// On error the grid is unchanged.
func (s *Session) SetPageSize(text string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	err := s.grid.SetPageSizeText(text)
	metrics.RecordGridOp("page_size", err)
	return s.view(), err
}

// GoToPage navigates to target: first, last, next, prev or a page number.
func (s *Session) GoToPage(target string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	t, err := grid.ParseTarget(target)
	if err == nil {
		err = s.grid.GoToPage(t)
	}
	metrics.RecordGridOp("go_to_page", err)
	return s.view(), err
}

// SetSelection selects or clears every row of the current page.
func (s *Session) SetSelection(all bool) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.grid.SetSelection(all)
	metrics.RecordGridOp("select_all", nil)
	return s.view()
}

// SetRowSelected toggles one row of the current page by its page index.
func (s *Session) SetRowSelected(index int, selected bool) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	err := s.grid.SetRowSelected(index, selected)
	metrics.RecordGridOp("select_row", err)
	return s.view(), err
}

// CollectSelected returns the selected rows of the current page and writes
// them to the log.
func (s *Session) CollectSelected(ctx context.Context) []grid.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	selected := s.grid.CollectSelected()
	metrics.RecordGridOp("collect_selected", nil)

	logging.WithFields(ctx, "session_id", s.ID).Info("selected vendor data",
		"page", s.grid.CurrentPage(),
		"count", len(selected),
		"rows", selected,
	)
	return selected
}

// EditSubject validates in and replaces the Subject.
// On any violation the Subject is left unchanged and all errors are returned.
func (s *Session) EditSubject(ctx context.Context, in vendor.Input) (vendor.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := vendor.Edit(&s.subject, in); err != nil {
		if es, ok := vendor.AsValidationErrors(err); ok {
			for _, e := range es {
				metrics.RecordValidationFailure("edit", e.Field)
			}
		}
		metrics.RecordGridOp("edit_subject", err)
		return s.subject, fmt.Errorf("edit vendor: %w", err)
	}

	metrics.RecordGridOp("edit_subject", nil)
	logging.WithFields(ctx, "session_id", s.ID).Info("vendor updated",
		"email", s.subject.Email,
	)
	return s.subject, nil
}

// expired reports whether the session has been idle longer than ttl at now.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}
