// Package templates renders the HTML pages and fragments of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// rawf formats trusted markup. Callers escape dynamic values with esc.
func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// component adapts a render function to templ.Component.
func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

func attrIf(cond bool, attr string) string {
	if cond {
		return " " + attr
	}
	return ""
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.rawf(`<title>%s</title>`, esc(title))
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw(`</head><body><main class="container">`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert">`)
		h.rawf(`<strong>%s</strong>`, esc(message))
		if action != "" {
			h.rawf(` <span>%s</span>`, esc(action))
		}
		if code != "" {
			h.rawf(` <small class="code">Code: %s</small>`, esc(code))
		}
		h.raw(`</div>`)
	})
}

// ErrorPage renders a full page around an error alert.
func ErrorPage(message, action, code string) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Something went wrong</h1>`)
		h.render(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back to registration</a></p>`)
	})
	return Layout("Error", body)
}
