package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/VendorGrid/internal/core"
	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

// Notice is a message shown above the grid after an operation.
type Notice struct {
	Error    bool
	Message  string
	Action   string
	Code     string
	Selected []grid.Record // rows returned by "show selected"
}

// EditForm holds the vendor edit dialog state.
type EditForm struct {
	Input  vendor.Input
	Errors map[string]string
	Open   bool
}

// NewEditForm returns a closed edit form prefilled from s.
func NewEditForm(s vendor.Subject) EditForm {
	return EditForm{Input: s.Input()}
}

func sessionPath(id, suffix string) string {
	return "/session/" + id + suffix
}

// VendorPage renders the vendor details, the edit dialog and the data grid.
func VendorPage(view core.SessionView, edit EditForm, notice Notice) templ.Component {
	body := component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Vendor Details</h1>`)
		h.render(ctx, SubjectCard(view.Subject))
		h.render(ctx, EditDialog(view.ID, edit))
		h.render(ctx, GridPartial(view, notice))
		h.rawf(`<form method="post" action="%s"><button type="submit" class="btn">Register another vendor</button></form>`,
			esc(sessionPath(view.ID, "/close")))
	})
	return Layout("Vendor Details", body)
}

// SubjectCard renders the vendor identity.
func SubjectCard(s vendor.Subject) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card subject" id="vendor-subject"><dl>`)
		rows := [][2]string{
			{"Full Name", s.FullName},
			{"Email", s.Email},
			{"Phone Number", s.PhoneNumber},
			{"Date of Birth", vendor.FormatDate(s.DOB)},
		}
		for _, r := range rows {
			h.rawf(`<dt>%s</dt><dd>%s</dd>`, esc(r[0]), esc(r[1]))
		}
		h.raw(`</dl>`)
		h.raw(`<button type="button" class="btn" data-open-dialog="edit-dialog">Edit</button>`)
		h.raw(`</section>`)
	})
}

// EditDialog renders the vendor edit form inside a dialog.
func EditDialog(sessionID string, form EditForm) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.rawf(`<dialog id="edit-dialog"%s>`, attrIf(form.Open, "open"))
		h.rawf(`<form method="post" action="%s" novalidate>`, esc(sessionPath(sessionID, "/vendor")))
		h.raw(`<h2>Edit Vendor</h2>`)
		fields := []formField{
			{name: vendor.FieldFullName, label: "Full Name", typ: "text", value: form.Input.FullName},
			{name: vendor.FieldEmail, label: "Email", typ: "email", value: form.Input.Email},
			{name: vendor.FieldPhoneNumber, label: "Phone Number", typ: "tel", value: form.Input.PhoneNumber},
			{name: vendor.FieldDOB, label: "Date of Birth", typ: "date", value: form.Input.DOB},
		}
		for _, f := range fields {
			writeField(h, f, form.Errors)
		}
		h.raw(`<div class="actions">`)
		h.raw(`<button type="submit" class="btn btn-primary">Save</button>`)
		h.raw(`<button type="button" class="btn" data-close-dialog="edit-dialog">Cancel</button>`)
		h.raw(`</div></form></dialog>`)
	})
}

// GridPartial renders the paged vendor data grid. It is also the HTMX
// swap target for every grid operation.
func GridPartial(view core.SessionView, notice Notice) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section class="card" id="vendor-grid">`)
		writeNotice(ctx, h, notice)
		writePageSizeForm(h, view)
		writeTable(h, view)
		writePager(h, view)
		writeSelectedForm(h, view)
		if len(notice.Selected) > 0 {
			writeSelectedRows(h, view.Keys, notice.Selected)
		}
		h.raw(`</section>`)
	})
}

func writeNotice(ctx context.Context, h *htmlWriter, n Notice) {
	switch {
	case n.Error:
		h.render(ctx, ErrorAlert(n.Message, n.Action, n.Code))
	case n.Message != "":
		h.rawf(`<div class="alert alert-info" role="status">%s</div>`, esc(n.Message))
	}
}

func writePageSizeForm(h *htmlWriter, view core.SessionView) {
	h.rawf(`<form class="inline" method="post" action="%s" data-partial>`, esc(sessionPath(view.ID, "/page-size")))
	h.raw(`<label for="page-size">Rows per page</label>`)
	h.rawf(`<input id="page-size" name="size" type="number" min="1" value="%d">`, view.PageSize)
	h.raw(`<button type="submit" class="btn">Apply</button></form>`)
}

func writeTable(h *htmlWriter, view core.SessionView) {
	h.raw(`<table class="grid"><thead><tr>`)

	h.raw(`<th class="select">`)
	h.rawf(`<form method="post" action="%s" data-partial>`, esc(sessionPath(view.ID, "/select")))
	h.rawf(`<input type="checkbox" name="all" value="true" aria-label="Select page" data-autosubmit%s>`,
		attrIf(view.AllSelected(), "checked"))
	h.raw(`<input type="hidden" name="all" value="false">`)
	h.raw(`<noscript><button type="submit" class="btn">Apply</button></noscript>`)
	h.raw(`</form></th><th>#</th>`)
	for _, k := range view.Keys {
		h.rawf(`<th>%s</th>`, esc(k))
	}
	h.raw(`</tr></thead><tbody>`)

	if len(view.Rows) == 0 {
		h.rawf(`<tr><td class="empty" colspan="%d">No data available</td></tr>`, len(view.Keys)+2)
	}
	for i, r := range view.Rows {
		h.rawf(`<tr%s><td class="select">`, attrIf(r.Selected, `class="selected"`))
		h.rawf(`<form method="post" action="%s" data-partial>`,
			esc(sessionPath(view.ID, "/rows/"+strconv.Itoa(i)+"/select")))
		h.rawf(`<input type="checkbox" name="selected" value="true" aria-label="Select row %d" data-autosubmit%s>`,
			view.Offset+i+1, attrIf(r.Selected, "checked"))
		h.raw(`<input type="hidden" name="selected" value="false">`)
		h.raw(`<noscript><button type="submit" class="btn">Apply</button></noscript>`)
		h.raw(`</form></td>`)
		h.rawf(`<td>%d</td>`, view.Offset+i+1)
		for _, k := range view.Keys {
			h.rawf(`<td>%s</td>`, esc(r.Text(k)))
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}

func writePager(h *htmlWriter, view core.SessionView) {
	action := esc(sessionPath(view.ID, "/page"))
	h.rawf(`<nav class="pager" aria-label="Pagination"><form class="inline" method="post" action="%s" data-partial>`, action)
	buttons := []struct {
		target  grid.Target
		label   string
		enabled bool
	}{
		{grid.First, "First", view.HasPrev},
		{grid.Prev, "Previous", view.HasPrev},
		{grid.Next, "Next", view.HasNext},
		{grid.Last, "Last", view.HasNext},
	}
	for _, b := range buttons {
		h.rawf(`<button type="submit" class="btn" name="target" value="%s"%s>%s</button>`,
			b.target.String(), attrIf(!b.enabled, "disabled"), esc(b.label))
	}
	h.rawf(`<span class="page-info">Page %d of %d (%d records)</span>`,
		view.CurrentPage, view.TotalPages, view.TotalRecords)
	h.raw(`</form>`)

	h.rawf(`<form class="inline" method="post" action="%s" data-partial>`, action)
	h.raw(`<label for="goto-page">Go to page</label>`)
	h.rawf(`<input id="goto-page" name="target" type="number" min="1" max="%d" value="%d">`,
		view.TotalPages, view.CurrentPage)
	h.raw(`<button type="submit" class="btn">Go</button></form></nav>`)
}

func writeSelectedForm(h *htmlWriter, view core.SessionView) {
	h.rawf(`<form class="inline" method="post" action="%s" data-partial>`, esc(sessionPath(view.ID, "/selected")))
	h.rawf(`<button type="submit" class="btn btn-primary"%s>Show selected (%d)</button>`,
		attrIf(view.SelectedCount == 0, "disabled"), view.SelectedCount)
	h.raw(`</form>`)
}

func writeSelectedRows(h *htmlWriter, keys []string, rows []grid.Record) {
	h.raw(`<div class="selected-rows"><h2>Selected vendors</h2><table class="grid"><thead><tr>`)
	for _, k := range keys {
		h.rawf(`<th>%s</th>`, esc(k))
	}
	h.raw(`</tr></thead><tbody>`)
	for _, r := range rows {
		h.raw(`<tr>`)
		for _, k := range keys {
			h.rawf(`<td>%s</td>`, esc(r.Text(k)))
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table></div>`)
}
