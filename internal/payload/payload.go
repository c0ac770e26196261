// Package payload encodes the registration data handed from the registration
// page to the display page.
//
// The payload travels in the URL path, so it is JSON wrapped in URL-safe
// base64. The uploaded spreadsheet rides along as a JSON-encoded
// array-of-arrays string whose first row is the header.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned when a token cannot be decoded.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is the decoded registration data.
type Payload struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	DOB          string `json:"dob"`
	UploadedData string `json:"uploadedData,omitempty"`
}

// Encode serializes p as URL-safe base64 JSON.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode. Standard base64, with or
// without padding, is accepted as well.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Payload{}, fmt.Errorf("%w: empty token", ErrInvalidPayload)
	}

	data, err := decodeBase64(token)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

func decodeBase64(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if strings.ContainsAny(trimmed, "+/") {
		return base64.RawStdEncoding.DecodeString(trimmed)
	}
	return base64.RawURLEncoding.DecodeString(trimmed)
}

// SetTable stores rows (header first) as the uploaded data.
func (p *Payload) SetTable(rows [][]string) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal uploaded data: %w", err)
	}
	p.UploadedData = string(data)
	return nil
}

// Table splits the uploaded data into a header row and data rows.
// Header cells are stringified; data cells keep their JSON types
// (string, float64, bool or nil). A payload without uploaded data returns
// a nil header and no rows.
func (p Payload) Table() ([]string, [][]any, error) {
	if strings.TrimSpace(p.UploadedData) == "" {
		return nil, nil, nil
	}

	var rows [][]any
	if err := json.Unmarshal([]byte(p.UploadedData), &rows); err != nil {
		return nil, nil, fmt.Errorf("%w: uploaded data: %v", ErrInvalidPayload, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		if cell == nil {
			continue
		}
		if s, ok := cell.(string); ok {
			header[i] = s
		} else {
			header[i] = fmt.Sprint(cell)
		}
	}
	return header, rows[1:], nil
}
