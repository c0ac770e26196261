package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of records shown per page when none is set.
const DefaultPageSize = 8

var (
	// ErrInvalidPageSize is returned when a page size is not a positive integer.
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrInvalidPage is returned when a page number is outside 1..TotalPages.
	ErrInvalidPage = errors.New("invalid page number")

	// ErrInvalidRow is returned when a row index is outside the current page.
	ErrInvalidRow = errors.New("invalid row index")
)

// Grid holds a dataset and its pagination state.
//
// The visible page is never stored; Page slices records on every call so it
// always reflects the current records, page size and page number.
type Grid struct {
	keys     []string
	records  []Record
	pageSize int
	current  int
}

// New creates a grid over records using the given page size.
// A non-positive pageSize falls back to DefaultPageSize.
func New(keys []string, records []Record, pageSize int) *Grid {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Grid{
		keys:     append([]string(nil), keys...),
		records:  records,
		pageSize: pageSize,
		current:  1,
	}
}

// FromTable normalizes a header row, ingests the data rows and returns a
// grid positioned on page 1.
func FromTable(header []string, rows [][]any, pageSize int) *Grid {
	return New(Keys(header), Ingest(header, rows), pageSize)
}

// Keys returns the ordered column keys of the dataset.
func (g *Grid) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Len returns the total number of records.
func (g *Grid) Len() int { return len(g.records) }

// PageSize returns the number of records per page.
func (g *Grid) PageSize() int { return g.pageSize }

// CurrentPage returns the 1-indexed current page.
func (g *Grid) CurrentPage() int { return g.current }

// TotalPages returns max(1, ceil(Len/PageSize)).
func (g *Grid) TotalPages() int {
	return totalPages(len(g.records), g.pageSize)
}

func totalPages(count, size int) int {
	if count == 0 {
		return 1
	}
	return (count + size - 1) / size
}

// HasPrev reports whether the "previous" control is enabled.
func (g *Grid) HasPrev() bool { return g.current > 1 }

// HasNext reports whether the "next" control is enabled.
func (g *Grid) HasNext() bool { return g.current < g.TotalPages() }

// bounds returns the [start, end) record indexes of the current page.
func (g *Grid) bounds() (int, int) {
	start := (g.current - 1) * g.pageSize
	if start > len(g.records) {
		start = len(g.records)
	}
	end := start + g.pageSize
	if end > len(g.records) {
		end = len(g.records)
	}
	return start, end
}

// Page returns copies of the records on the current page.
func (g *Grid) Page() []Record {
	start, end := g.bounds()
	page := make([]Record, 0, end-start)
	for _, r := range g.records[start:end] {
		page = append(page, r.clone())
	}
	return page
}

// Offset returns the dataset index of the first record on the current page.
func (g *Grid) Offset() int {
	start, _ := g.bounds()
	return start
}

// SetPageSize replaces the page size and returns to page 1.
func (g *Grid) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	g.pageSize = n
	g.current = 1
	return nil
}

// SetPageSizeText parses page size input from a text field.
// Non-numeric input fails with ErrInvalidPageSize.
func (g *Grid) SetPageSizeText(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, s)
	}
	return g.SetPageSize(n)
}

// GoToPage moves the current page according to t.
//
// First and Last always succeed. Next and Prev are no-ops at the last and
// first page respectively. An explicit page must be within 1..TotalPages.
func (g *Grid) GoToPage(t Target) error {
	total := g.TotalPages()

	switch t.kind {
	case targetFirst:
		g.current = 1
	case targetLast:
		g.current = total
	case targetNext:
		if g.current < total {
			g.current++
		}
	case targetPrev:
		if g.current > 1 {
			g.current--
		}
	case targetPage:
		if t.page < 1 || t.page > total {
			return fmt.Errorf("%w: %d (valid range 1-%d)", ErrInvalidPage, t.page, total)
		}
		g.current = t.page
	default:
		return fmt.Errorf("%w: unknown target", ErrInvalidPage)
	}
	return nil
}

// SetSelection sets the selected flag on every record of the current page.
// Records on other pages are not touched.
func (g *Grid) SetSelection(all bool) {
	start, end := g.bounds()
	for i := start; i < end; i++ {
		g.records[i].Selected = all
	}
}

// SetRowSelected sets the selected flag on the i-th record of the current page.
func (g *Grid) SetRowSelected(i int, selected bool) error {
	start, end := g.bounds()
	if i < 0 || start+i >= end {
		return fmt.Errorf("%w: %d", ErrInvalidRow, i)
	}
	g.records[start+i].Selected = selected
	return nil
}

// CollectSelected returns the selected records of the current page in page order.
func (g *Grid) CollectSelected() []Record {
	start, end := g.bounds()
	var selected []Record
	for _, r := range g.records[start:end] {
		if r.Selected {
			selected = append(selected, r.clone())
		}
	}
	return selected
}
