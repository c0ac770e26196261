package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/VendorGrid/internal/core"
	"github.com/JonMunkholm/VendorGrid/internal/logging"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
	"github.com/JonMunkholm/VendorGrid/internal/web/templates"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// handleRegisterForm renders the empty registration form.
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.RegisterPage(templates.RegisterForm{}))
}

// handleRegister validates the registration form and uploaded spreadsheet,
// then redirects to the vendor display page.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	// Allow the spreadsheet plus room for the text fields and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = core.ErrFileTooLarge
		}
		s.registrationFailed(w, r, templates.RegisterForm{}, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := vendor.Registration{
		FullName:    r.FormValue(vendor.FieldFullName),
		Email:       r.FormValue(vendor.FieldEmail),
		Password:    r.FormValue(vendor.FieldPassword),
		PhoneNumber: r.FormValue(vendor.FieldPhoneNumber),
		DOB:         r.FormValue(vendor.FieldDOB),
	}
	echo := templates.RegisterForm{
		FullName:    form.FullName,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
		DOB:         form.DOB,
	}

	in := core.RegistrationInput{Form: form}
	file, header, err := r.FormFile(vendor.FieldUpload)
	switch {
	case err == nil:
		defer file.Close()
		in.File = file
		in.FileName = header.Filename
		in.Size = header.Size
	case !errors.Is(err, http.ErrMissingFile):
		s.registrationFailed(w, r, echo, err)
		return
	}

	token, err := s.service.Register(ctx, in)
	if err != nil {
		s.registrationFailed(w, r, echo, err)
		return
	}

	location := "/vendor/" + url.PathEscape(token)
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]string{
			"formData": token,
			"location": location,
		})
		return
	}
	redirect(w, r, location)
}

// registrationFailed re-renders the form with field errors or a form-level alert.
func (s *Server) registrationFailed(w http.ResponseWriter, r *http.Request, form templates.RegisterForm, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	if wantsJSON(r) {
		logError(r, err, status, userMsg.Code)
		respondErrorJSON(w, userMsg, fieldErrors(err), status)
		return
	}

	if fields := fieldErrors(err); fields != nil {
		logging.FromContext(r.Context()).Info("registration rejected", "fields", len(fields))
		form.Errors = fields
	} else {
		logError(r, err, status, userMsg.Code)
		form.Alert = core.FormatUserError(err)
	}
	render(w, r, status, templates.RegisterPage(form))
}
