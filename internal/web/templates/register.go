package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

// RegisterForm holds the values and errors of the registration form.
// The password is never echoed back.
type RegisterForm struct {
	FullName    string
	Email       string
	PhoneNumber string
	DOB         string
	Errors      map[string]string // field name -> message
	Alert       string            // form-level message, e.g. an unreadable file
}

type formField struct {
	name  string
	label string
	typ   string
	value string
	extra string
}

func writeField(h *htmlWriter, f formField, errs map[string]string) {
	msg := errs[f.name]
	class := "field"
	if msg != "" {
		class += " has-error"
	}
	h.rawf(`<div class="%s">`, class)
	h.rawf(`<label for="%s">%s</label>`, esc(f.name), esc(f.label))
	h.rawf(`<input id="%s" name="%s" type="%s"`, esc(f.name), esc(f.name), esc(f.typ))
	if f.value != "" {
		h.rawf(` value="%s"`, esc(f.value))
	}
	if f.extra != "" {
		h.raw(" " + f.extra)
	}
	if msg != "" {
		h.rawf(` aria-invalid="true" aria-describedby="%s-error"`, esc(f.name))
	}
	h.raw(`>`)
	if msg != "" {
		h.rawf(`<span id="%s-error" class="field-error">%s</span>`, esc(f.name), esc(msg))
	}
	h.raw(`</div>`)
}

// RegisterPage renders the vendor registration form.
func RegisterPage(form RegisterForm) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Vendor Registration</h1>`)
		if form.Alert != "" {
			h.render(ctx, ErrorAlert(form.Alert, "", ""))
		}
		h.raw(`<form class="card" method="post" action="/register" enctype="multipart/form-data" novalidate>`)
		fields := []formField{
			{name: vendor.FieldFullName, label: "Full Name", typ: "text", value: form.FullName, extra: `autocomplete="name"`},
			{name: vendor.FieldEmail, label: "Email", typ: "email", value: form.Email, extra: `autocomplete="email"`},
			{name: vendor.FieldPassword, label: "Password", typ: "password", extra: `autocomplete="new-password"`},
			{name: vendor.FieldPhoneNumber, label: "Phone Number", typ: "tel", value: form.PhoneNumber, extra: `inputmode="numeric"`},
			{name: vendor.FieldDOB, label: "Date of Birth", typ: "date", value: form.DOB},
			{name: vendor.FieldUpload, label: "Vendor Spreadsheet", typ: "file", extra: `accept=".xlsx,.xlsm,.xls,.csv"`},
		}
		for _, f := range fields {
			writeField(h, f, form.Errors)
		}
		h.raw(`<button type="submit" class="btn btn-primary">Register</button>`)
		h.raw(`</form>`)
	})
	return Layout("Vendor Registration", body)
}
