package web

// handlers_common.go contains shared helpers used across handlers.

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/VendorGrid/internal/core"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}

// redirect sends the client to url, using HX-Redirect for HTMX requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// parseBool reads a form flag. The first value wins, so a checkbox placed
// before a hidden "false" input reports its checked state.
func parseBool(r *http.Request, name string) (bool, bool) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// session looks up the session named in the URL, writing the error response
// when it is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return sess, true
}

// handleHealth reports liveness with session and parse limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		core.ServiceStatus
	}{
		Status:        "ok",
		ServiceStatus: s.service.Status(),
	})
}
