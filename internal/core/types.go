// Package core provides the business logic for vendor registration and the
// vendor data grid. This package has no UI dependencies and can be used by
// any frontend.
package core

import (
	"errors"
	"io"

	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrPayloadTooLarge is returned when the encoded vendor link would exceed
	// the configured URL budget.
	ErrPayloadTooLarge = errors.New("vendor data too large for link")

	// ErrNoFile is returned when the registration form carries no spreadsheet.
	ErrNoFile = errors.New("no file uploaded")

	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session store is full.
	ErrTooManySessions = errors.New("too many open sessions")
)

// RegistrationInput is one submission of the registration form.
type RegistrationInput struct {
	Form     vendor.Registration
	FileName string    // Original name of the uploaded spreadsheet
	File     io.Reader // nil when no file was attached
	Size     int64     // Declared size in bytes; 0 if unknown
}

// SessionView is a read-only snapshot of a display session.
type SessionView struct {
	ID            string         `json:"id"`
	Subject       vendor.Subject `json:"subject"`
	Keys          []string       `json:"keys"`
	Rows          []grid.Record  `json:"rows"`
	Offset        int            `json:"offset"`
	CurrentPage   int            `json:"currentPage"`
	TotalPages    int            `json:"totalPages"`
	PageSize      int            `json:"pageSize"`
	TotalRecords  int            `json:"totalRecords"`
	SelectedCount int            `json:"selectedCount"`
	HasPrev       bool           `json:"hasPrev"`
	HasNext       bool           `json:"hasNext"`
}

// AllSelected reports whether every row of the current page is selected.
// An empty page is never all-selected.
func (v SessionView) AllSelected() bool {
	return len(v.Rows) > 0 && v.SelectedCount == len(v.Rows)
}
