package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/JonMunkholm/VendorGrid/internal/config"
	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/metrics"
	"github.com/JonMunkholm/VendorGrid/internal/payload"
	"github.com/JonMunkholm/VendorGrid/internal/sheet"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

func validForm() vendor.Registration {
	return vendor.Registration{
		FullName:    "Ann Lee",
		Email:       "ann@example.com",
		Password:    "secret1",
		PhoneNumber: "5551234567",
		DOB:         "1990-04-12",
	}
}

func vendorCSV(n int) string {
	var b strings.Builder
	b.WriteString("ID,Company Name\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,Vendor %d\n", i, i)
	}
	return b.String()
}

// testClock is a settable time source.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(config.Defaults())
	svc.now = clock.now
	return svc, clock
}

func openSession(t *testing.T, svc *Service, rows int) *Session {
	t.Helper()
	token, err := svc.Register(context.Background(), RegistrationInput{
		Form:     validForm(),
		FileName: "vendors.csv",
		File:     strings.NewReader(vendorCSV(rows)),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sess, err := svc.Open(context.Background(), token)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return sess
}

func TestService_RegisterAndOpen(t *testing.T) {
	svc, _ := newTestService(t)
	sess := openSession(t, svc, 3)

	view := sess.Snapshot()
	if view.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", view.TotalRecords)
	}
	wantKeys := []string{"id", "companyname"}
	if strings.Join(view.Keys, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Keys = %v, want %v", view.Keys, wantKeys)
	}
	if view.Subject.FullName != "Ann Lee" || view.Subject.Email != "ann@example.com" {
		t.Errorf("Subject = %+v", view.Subject)
	}
	if got := vendor.FormatDate(view.Subject.DOB); got != "1990-04-12" {
		t.Errorf("DOB = %q, want 1990-04-12", got)
	}
	if view.PageSize != grid.DefaultPageSize || view.CurrentPage != 1 || view.TotalPages != 1 {
		t.Errorf("paging = %d/%d size %d", view.CurrentPage, view.TotalPages, view.PageSize)
	}
	if got := view.Rows[1].Text("companyname"); got != "Vendor 1" {
		t.Errorf("row 1 companyname = %q, want Vendor 1", got)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}
}

func TestService_RegisterPayloadOmitsPassword(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.Register(context.Background(), RegistrationInput{
		Form:     validForm(),
		FileName: "vendors.csv",
		File:     strings.NewReader(vendorCSV(1)),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := payload.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.DOB != "1990-04-12" || p.PhoneNumber != "5551234567" {
		t.Errorf("payload = %+v", p)
	}
	if strings.Contains(p.UploadedData, "secret1") {
		t.Error("payload must not carry the password")
	}
}

func sheetRowsObserved(t *testing.T) (count uint64, sum float64) {
	t.Helper()
	var m dto.Metric
	if err := metrics.SheetRows.Write(&m); err != nil {
		t.Fatalf("read sheet rows histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestService_RegisterCountsDataRows(t *testing.T) {
	tests := []struct {
		name string
		rows int
	}{
		{"three vendors", 3},
		{"header only", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			count, sum := sheetRowsObserved(t)

			svc.Register(context.Background(), RegistrationInput{
				Form:     validForm(),
				FileName: "vendors.csv",
				File:     strings.NewReader(vendorCSV(tt.rows)),
			})

			gotCount, gotSum := sheetRowsObserved(t)
			if gotCount != count+1 {
				t.Fatalf("observations = %d, want %d", gotCount, count+1)
			}
			if got := gotSum - sum; got != float64(tt.rows) {
				t.Errorf("observed rows = %v, want %d (header excluded)", got, tt.rows)
			}
		})
	}
}

func TestService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*RegistrationInput)
		wantFields []string
	}{
		{
			name: "every field wrong",
			mutate: func(in *RegistrationInput) {
				in.Form = vendor.Registration{Email: "nope", Password: "abc", PhoneNumber: "12-34"}
				in.File = nil
			},
			wantFields: []string{
				vendor.FieldFullName, vendor.FieldEmail, vendor.FieldPassword,
				vendor.FieldPhoneNumber, vendor.FieldDOB, vendor.FieldUpload,
			},
		},
		{
			name:       "no file",
			mutate:     func(in *RegistrationInput) { in.File = nil },
			wantFields: []string{vendor.FieldUpload},
		},
		{
			name:       "empty file",
			mutate:     func(in *RegistrationInput) { in.File = strings.NewReader("") },
			wantFields: []string{vendor.FieldUpload},
		},
		{
			name:       "short password",
			mutate:     func(in *RegistrationInput) { in.Form.Password = "12345" },
			wantFields: []string{vendor.FieldPassword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := RegistrationInput{
				Form:     validForm(),
				FileName: "vendors.csv",
				File:     strings.NewReader(vendorCSV(2)),
			}
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			es, ok := vendor.AsValidationErrors(err)
			if !ok {
				t.Fatalf("Register() error = %v, want ValidationErrors", err)
			}
			if len(es) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(es), es, len(tt.wantFields))
			}
			for _, f := range tt.wantFields {
				if es.ByField(f) == "" {
					t.Errorf("missing error for field %q", f)
				}
			}
		})
	}
}

func TestService_RegisterFileErrors(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.Upload.MaxFileSize = 32

	tests := []struct {
		name    string
		in      RegistrationInput
		wantErr error
	}{
		{
			name:    "unsupported format",
			in:      RegistrationInput{FileName: "vendors.pdf", File: strings.NewReader("x")},
			wantErr: sheet.ErrUnsupportedFormat,
		},
		{
			name:    "declared size too large",
			in:      RegistrationInput{FileName: "vendors.csv", File: strings.NewReader("a"), Size: 33},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "body larger than declared",
			in:      RegistrationInput{FileName: "vendors.csv", File: strings.NewReader(vendorCSV(10))},
			wantErr: ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Form = validForm()
			_, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_RegisterRejectsOversizedLink(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.Upload.MaxPayloadBytes = 2 << 10

	register := func(rows int) (string, error) {
		return svc.Register(context.Background(), RegistrationInput{
			Form:     validForm(),
			FileName: "vendors.csv",
			File:     strings.NewReader(vendorCSV(rows)),
		})
	}

	token, err := register(5)
	if err != nil {
		t.Fatalf("Register() small file error = %v", err)
	}
	if len(token) > svc.cfg.Upload.MaxPayloadBytes {
		t.Fatalf("token length %d exceeds limit", len(token))
	}

	_, err = register(500)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Register() error = %v, want ErrPayloadTooLarge", err)
	}
	if got := MapError(err).Code; got != "FILE007" {
		t.Errorf("MapError() code = %q, want FILE007", got)
	}
}

func TestService_OpenRejectsBadPayload(t *testing.T) {
	svc, _ := newTestService(t)

	badSubject, err := payload.Encode(payload.Payload{FullName: "Ann", Email: "bad"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for name, token := range map[string]string{
		"not base64":      "%%%",
		"invalid subject": badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Open(context.Background(), token)
			if !errors.Is(err, payload.ErrInvalidPayload) {
				t.Errorf("Open() error = %v, want ErrInvalidPayload", err)
			}
			if MapError(err).Code != "PAY001" {
				t.Errorf("MapError code = %q, want PAY001", MapError(err).Code)
			}
		})
	}
}

func TestService_OpenWithoutUploadedData(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := payload.Encode(payload.Payload{
		FullName:    "Ann Lee",
		Email:       "ann@example.com",
		PhoneNumber: "555",
		DOB:         "2000-01-01",
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	sess, err := svc.Open(context.Background(), token)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	view := sess.Snapshot()
	if view.TotalRecords != 0 || view.TotalPages != 1 || len(view.Rows) != 0 {
		t.Errorf("view = %+v, want empty grid on page 1 of 1", view)
	}
}

func TestService_TooManySessions(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.Session.Max = 1

	openSession(t, svc, 1)

	token, _ := svc.Register(context.Background(), RegistrationInput{
		Form:     validForm(),
		FileName: "vendors.csv",
		File:     strings.NewReader(vendorCSV(1)),
	})
	if _, err := svc.Open(context.Background(), token); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("Open() error = %v, want ErrTooManySessions", err)
	}
}

func TestService_SessionLookupAndSweep(t *testing.T) {
	svc, clock := newTestService(t)
	idle := openSession(t, svc, 1)
	active := openSession(t, svc, 1)

	if _, err := svc.Session("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session(missing) error = %v, want ErrSessionNotFound", err)
	}

	clock.advance(svc.cfg.Session.TTL - time.Minute)
	active.Snapshot()
	clock.advance(2 * time.Minute)

	if _, err := svc.Session(idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session(idle) error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Session(active.ID); err != nil {
		t.Errorf("Session(active) error = %v", err)
	}

	if removed := svc.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}

	svc.CloseSession(active.ID)
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() after close = %d, want 0", svc.SessionCount())
	}
}

func TestService_SweeperStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.Session.SweepInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSessionSweeper(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSession_Paging(t *testing.T) {
	svc, _ := newTestService(t)
	sess := openSession(t, svc, 20)

	view, err := sess.GoToPage("last")
	if err != nil {
		t.Fatalf("GoToPage(last) error = %v", err)
	}
	if view.CurrentPage != 3 || len(view.Rows) != 4 || view.Offset != 16 {
		t.Errorf("last page = page %d, %d rows, offset %d", view.CurrentPage, len(view.Rows), view.Offset)
	}
	if view.HasNext || !view.HasPrev {
		t.Errorf("HasNext = %v, HasPrev = %v", view.HasNext, view.HasPrev)
	}

	if _, err := sess.GoToPage("9"); !errors.Is(err, grid.ErrInvalidPage) {
		t.Errorf("GoToPage(9) error = %v, want ErrInvalidPage", err)
	}
	if _, err := sess.GoToPage("sideways"); !errors.Is(err, grid.ErrInvalidPage) {
		t.Errorf("GoToPage(sideways) error = %v, want ErrInvalidPage", err)
	}

	view, err = sess.SetPageSize("5")
	if err != nil {
		t.Fatalf("SetPageSize(5) error = %v", err)
	}
	if view.CurrentPage != 1 || view.TotalPages != 4 {
		t.Errorf("after SetPageSize(5): page %d of %d", view.CurrentPage, view.TotalPages)
	}

	view, err = sess.SetPageSize("abc")
	if !errors.Is(err, grid.ErrInvalidPageSize) {
		t.Errorf("SetPageSize(abc) error = %v, want ErrInvalidPageSize", err)
	}
	if view.PageSize != 5 {
		t.Errorf("PageSize after invalid input = %d, want 5", view.PageSize)
	}
}

func TestSession_Selection(t *testing.T) {
	svc, _ := newTestService(t)
	sess := openSession(t, svc, 10)

	view := sess.SetSelection(true)
	if !view.AllSelected() || view.SelectedCount != 8 {
		t.Errorf("SelectedCount = %d, want 8", view.SelectedCount)
	}

	if _, err := sess.SetRowSelected(2, false); err != nil {
		t.Fatalf("SetRowSelected() error = %v", err)
	}
	if _, err := sess.SetRowSelected(8, true); !errors.Is(err, grid.ErrInvalidRow) {
		t.Errorf("SetRowSelected(8) error = %v, want ErrInvalidRow", err)
	}

	selected := sess.CollectSelected(context.Background())
	if len(selected) != 7 {
		t.Fatalf("CollectSelected() = %d rows, want 7", len(selected))
	}
	if selected[2].Text("id") != "3" {
		t.Errorf("third selected id = %q, want 3", selected[2].Text("id"))
	}

	view, _ = sess.GoToPage("next")
	if view.SelectedCount != 0 {
		t.Errorf("page 2 SelectedCount = %d, want 0", view.SelectedCount)
	}
}

func TestSession_EditSubject(t *testing.T) {
	svc, _ := newTestService(t)
	sess := openSession(t, svc, 1)
	before := sess.Snapshot().Subject

	_, err := sess.EditSubject(context.Background(), vendor.Input{
		FullName:    "Bo",
		Email:       "not-an-email",
		PhoneNumber: "5550000",
		DOB:         "2001-02-03",
	})
	if !errors.Is(err, vendor.ErrInvalidFormat) {
		t.Errorf("EditSubject() error = %v, want ErrInvalidFormat", err)
	}
	if sess.Snapshot().Subject != before {
		t.Errorf("Subject changed after failed edit: %+v", sess.Snapshot().Subject)
	}

	updated, err := sess.EditSubject(context.Background(), vendor.Input{
		FullName:    "Bo Chen",
		Email:       "bo@example.com",
		PhoneNumber: "5550000",
		DOB:         "2001-02-03",
	})
	if err != nil {
		t.Fatalf("EditSubject() error = %v", err)
	}
	if updated.FullName != "Bo Chen" || sess.Snapshot().Subject.Email != "bo@example.com" {
		t.Errorf("Subject = %+v", sess.Snapshot().Subject)
	}
}

func TestService_Status(t *testing.T) {
	svc, _ := newTestService(t)
	openSession(t, svc, 1)

	status := svc.Status()
	if status.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", status.Sessions)
	}
	if status.Uploads.MaxConcurrent != 5 || status.Uploads.Active != 0 {
		t.Errorf("Uploads = %+v", status.Uploads)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.WaitForParses(ctx); err != nil {
		t.Errorf("WaitForParses() error = %v", err)
	}
}
