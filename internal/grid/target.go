package grid

import (
	"fmt"
	"strconv"
	"strings"
)

type targetKind int

const (
	targetFirst targetKind = iota + 1
	targetLast
	targetNext
	targetPrev
	targetPage
)

// Target identifies a page navigation request.
type Target struct {
	kind targetKind
	page int
}

var (
	First = Target{kind: targetFirst}
	Last  = Target{kind: targetLast}
	Next  = Target{kind: targetNext}
	Prev  = Target{kind: targetPrev}
)

// PageNumber returns a target for an explicit 1-indexed page number.
func PageNumber(n int) Target {
	return Target{kind: targetPage, page: n}
}

// String returns the form value that ParseTarget accepts for t.
func (t Target) String() string {
	switch t.kind {
	case targetFirst:
		return "first"
	case targetLast:
		return "last"
	case targetNext:
		return "next"
	case targetPrev:
		return "prev"
	case targetPage:
		return strconv.Itoa(t.page)
	default:
		return ""
	}
}

// ParseTarget parses "first", "last", "next", "prev" or a page number.
// "previous" is accepted as an alias for "prev".
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "first":
		return First, nil
	case "last":
		return Last, nil
	case "next":
		return Next, nil
	case "prev", "previous":
		return Prev, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidPage, s)
	}
	return PageNumber(n), nil
}
