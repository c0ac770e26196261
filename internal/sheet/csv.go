package sheet

// csv.go reads delimited text exported from Excel and similar tools.
//
// Those exports carry a few artifacts that need to go before parsing:
//   - a UTF-8 BOM, or a UTF-16 encoding announced by its BOM ("Unicode Text")
//   - invalid UTF-8 bytes from legacy code pages
//   - formula-quoted cells such as ="00123" used to keep leading zeros
//
// The delimiter is sniffed from the header line: comma, semicolon or tab.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func readCSV(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	for _, row := range rows {
		for i, cell := range row {
			row[i] = cleanCell(cell)
		}
	}
	return rows, nil
}

// decodeText strips a BOM and converts UTF-16 input to UTF-8.
// Without a BOM the input is treated as UTF-8 and invalid bytes become U+FFFD.
func decodeText(data []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return out, nil
}

func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// cleanCell trims whitespace and unwraps Excel's ="value" text guard.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
