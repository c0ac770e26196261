package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/VendorGrid/internal/core"
	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
	"github.com/JonMunkholm/VendorGrid/internal/web/templates"
)

// handleOpenVendor decodes the payload in the URL and opens a display
// session. Browsers are sent on to the session page so reloads and Back
// reuse the session instead of opening another.
func (s *Server) handleOpenVendor(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	sess, err := s.service.Open(ctx, chi.URLParam(r, "formData"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, sess.Snapshot())
		return
	}
	redirect(w, r, "/session/"+sess.ID)
}

// handleCloseSession discards the session and returns to the registration form.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.service.CloseSession(sess.ID)
	logging.WithFields(r.Context(), "session_id", sess.ID).Info("session closed")
	redirect(w, r, "/")
}

// handleSessionPage re-renders the vendor page of an open session.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view := sess.Snapshot()
	render(w, r, http.StatusOK, templates.VendorPage(view, templates.NewEditForm(view.Subject), templates.Notice{}))
}

// handleSessionJSON returns the current page as JSON.
func (s *Server) handleSessionJSON(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleGoToPage navigates with target=first|last|next|prev|N.
func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := sess.GoToPage(r.FormValue("target"))
	s.respondGrid(w, r, sess, view, templates.Notice{}, err)
}

// handleSetPageSize applies size=N and returns to page 1.
func (s *Server) handleSetPageSize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view, err := sess.SetPageSize(r.FormValue("size"))
	s.respondGrid(w, r, sess, view, templates.Notice{}, err)
}

// handleSelectAll selects or clears the current page with all=true|false.
func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	all, ok := parseBool(r, "all")
	if !ok {
		s.respondGrid(w, r, sess, sess.Snapshot(), templates.Notice{},
			fmt.Errorf("%w: all must be true or false", grid.ErrInvalidRow))
		return
	}
	s.respondGrid(w, r, sess, sess.SetSelection(all), templates.Notice{}, nil)
}

// handleSelectRow sets one row of the current page with selected=true|false.
func (s *Server) handleSelectRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondGrid(w, r, sess, sess.Snapshot(), templates.Notice{},
			fmt.Errorf("%w: %q", grid.ErrInvalidRow, chi.URLParam(r, "index")))
		return
	}
	selected, ok := parseBool(r, "selected")
	if !ok {
		s.respondGrid(w, r, sess, sess.Snapshot(), templates.Notice{},
			fmt.Errorf("%w: selected must be true or false", grid.ErrInvalidRow))
		return
	}
	view, err := sess.SetRowSelected(index, selected)
	s.respondGrid(w, r, sess, view, templates.Notice{}, err)
}

// handleCollectSelected logs the selected rows of the current page and
// shows them below the grid.
func (s *Server) handleCollectSelected(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)
	selected := sess.CollectSelected(ctx)
	view := sess.Snapshot()

	if wantsJSON(r) {
		if selected == nil {
			selected = []grid.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"selected": selected})
		return
	}

	notice := templates.Notice{
		Message:  fmt.Sprintf("%d selected row(s) on page %d", len(selected), view.CurrentPage),
		Selected: selected,
	}
	if isHTMX(r) {
		render(w, r, http.StatusOK, templates.GridPartial(view, notice))
		return
	}
	render(w, r, http.StatusOK, templates.VendorPage(view, templates.NewEditForm(view.Subject), notice))
}

// handleEditVendor validates the edit form and replaces the vendor details.
// On failure the dialog is shown again with every field error.
func (s *Server) handleEditVendor(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ctx := WithRequestMetadata(r.Context(), r)

	in := vendor.Input{
		FullName:    r.FormValue(vendor.FieldFullName),
		Email:       r.FormValue(vendor.FieldEmail),
		PhoneNumber: r.FormValue(vendor.FieldPhoneNumber),
		DOB:         r.FormValue(vendor.FieldDOB),
	}

	subject, err := sess.EditSubject(ctx, in)
	if err != nil {
		status := statusFor(err)
		if wantsJSON(r) {
			respondErrorJSON(w, core.MapError(err), fieldErrors(err), status)
			return
		}
		edit := templates.EditForm{Input: in, Errors: fieldErrors(err), Open: true}
		render(w, r, status, templates.VendorPage(sess.Snapshot(), edit, templates.Notice{}))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, subject)
		return
	}
	redirect(w, r, "/session/"+sess.ID)
}

// respondGrid writes the result of a grid operation: the snapshot for JSON
// clients, the grid fragment for HTMX, or a redirect back to the page.
// Errors keep the grid unchanged and are shown above it.
func (s *Server) respondGrid(w http.ResponseWriter, r *http.Request, sess *core.Session, view core.SessionView, notice templates.Notice, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		msg := core.MapError(err)
		logError(r, err, status, msg.Code)
		notice = templates.Notice{Error: true, Message: msg.Message, Action: msg.Action, Code: msg.Code}
	}

	switch {
	case wantsJSON(r):
		if err != nil {
			respondErrorJSON(w, core.MapError(err), nil, status)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case isHTMX(r):
		render(w, r, status, templates.GridPartial(view, notice))
	case err != nil:
		render(w, r, status, templates.VendorPage(view, templates.NewEditForm(view.Subject), notice))
	default:
		redirect(w, r, "/session/"+sess.ID)
	}
}
