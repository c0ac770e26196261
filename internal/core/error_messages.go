package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Required field: A required field is empty
//	         Action: Fill in every highlighted field
//	VAL002 - Invalid format: A field does not match the expected format
//	         Action: Check the email, phone number and date of birth
//
// # Grid Errors (PAGE001-PAGE099)
//
//	PAGE001 - Invalid page size: Page size must be a positive whole number
//	          Action: Enter a number greater than zero
//	PAGE002 - Invalid page: The requested page does not exist
//	          Action: Enter a page number between 1 and the last page
//	PAGE003 - Invalid row: The selected row is not on the current page
//	          Action: Refresh the page and try again
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported format (xlsx, xls and csv are accepted)
//	FILE003 - Encoding error
//	FILE004 - No file selected
//	FILE005 - Empty file
//	FILE006 - Unreadable workbook / invalid csv
//	FILE007 - Spreadsheet too large for the vendor link
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired or unknown
//	SES002 - Too many open sessions
//	PAY001 - Vendor link is invalid (payload could not be decoded)
//
// # Upload / Request Errors (UPL001-UPL099, RATE001)
//
//	UPL002 - Too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Sentinel errors are matched first with errors.Is. Errors that only carry
// text (from libraries or the standard library) are matched case-insensitively
// against substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/VendorGrid/internal/grid"
	"github.com/JonMunkholm/VendorGrid/internal/payload"
	"github.com/JonMunkholm/VendorGrid/internal/sheet"
	"github.com/JonMunkholm/VendorGrid/internal/vendor"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgRequired = UserMessage{
		Message: "A required field is empty",
		Action:  "Fill in every highlighted field",
		Code:    "VAL001",
	}
	msgInvalidFormat = UserMessage{
		Message: "A field does not match the expected format",
		Action:  "Check the email, phone number and date of birth",
		Code:    "VAL002",
	}
	msgPageSize = UserMessage{
		Message: "Please enter a valid number for page size",
		Action:  "Enter a number greater than zero",
		Code:    "PAGE001",
	}
	msgPage = UserMessage{
		Message: "Invalid page number",
		Action:  "Enter a page number between 1 and the last page",
		Code:    "PAGE002",
	}
	msgRow = UserMessage{
		Message: "The selected row is not on the current page",
		Action:  "Refresh the page and try again",
		Code:    "PAGE003",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Upload a smaller spreadsheet",
		Code:    "FILE001",
	}
	msgUnsupported = UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload an .xlsx, .xls or .csv file",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file selected",
		Action:  "Please select a spreadsheet to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "No data available from the uploaded file",
		Action:  "Upload a spreadsheet with a header row",
		Code:    "FILE005",
	}
	msgUnreadable = UserMessage{
		Message: "The spreadsheet could not be read",
		Action:  "Check that the file opens in Excel and try again",
		Code:    "FILE006",
	}
	msgPayloadTooLarge = UserMessage{
		Message: "The spreadsheet has too much data to display",
		Action:  "Upload fewer rows or columns",
		Code:    "FILE007",
	}
	msgSessionNotFound = UserMessage{
		Message: "This vendor page has expired",
		Action:  "Submit the registration form again",
		Code:    "SES001",
	}
	msgTooManySessions = UserMessage{
		Message: "Too many vendor pages are open",
		Action:  "Please try again in a few minutes",
		Code:    "SES002",
	}
	msgPayload = UserMessage{
		Message: "Failed to load vendor data",
		Action:  "Submit the registration form again",
		Code:    "PAY001",
	}
	msgBusy = UserMessage{
		Message: "System busy",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRateLimit = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// sentinelMessages is checked in order with errors.Is.
// ValidationErrors can wrap both kinds; a missing field is reported first.
// A payload error may wrap validation errors and is reported as a payload error.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{payload.ErrInvalidPayload, msgPayload},
	{vendor.ErrMissingField, msgRequired},
	{vendor.ErrInvalidFormat, msgInvalidFormat},
	{grid.ErrInvalidPageSize, msgPageSize},
	{grid.ErrInvalidPage, msgPage},
	{grid.ErrInvalidRow, msgRow},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrPayloadTooLarge, msgPayloadTooLarge},
	{ErrNoFile, msgNoFile},
	{sheet.ErrUnsupportedFormat, msgUnsupported},
	{sheet.ErrEmptySheet, msgEmptyFile},
	{sheet.ErrNoWorksheet, msgEmptyFile},
	{ErrSessionNotFound, msgSessionNotFound},
	{ErrTooManySessions, msgTooManySessions},
	{ErrTooManyUploads, msgBusy},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern matches errors that only carry text.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"request body too large", msgFileTooLarge},
	{"file too large", msgFileTooLarge},
	{"encoding error", msgEncoding},
	{"invalid csv", msgUnreadable},
	{"open xlsx", msgUnreadable},
	{"open xls", msgUnreadable},
	{"zip: not a valid zip file", msgUnreadable},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"rate limit", msgRateLimit},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
