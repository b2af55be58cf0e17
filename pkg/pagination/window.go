package pagination

import (
	"fmt"
	"iter"
	"slices"
)

// MaxPageSize is the largest limit a single openFDA request may ask for.
const MaxPageSize = 99

// Window is a contiguous slice of the result set.
type Window struct {
	Offset int
	Limit  int
}

// End returns the exclusive upper bound of the window.
func (w Window) End() int {
	return w.Offset + w.Limit
}

// Plan splits total records into full pages of pageSize followed by one
// partial page holding the remainder, if any.
func Plan(total, pageSize int) ([]Window, error) {
	seq, err := Windows(total, pageSize)
	if err != nil {
		return nil, err
	}
	return slices.AppendSeq([]Window{}, seq), nil
}

// Windows yields the windows of Plan in ascending offset order without
// materializing them, so the page count never drives an allocation.
func Windows(total, pageSize int) (iter.Seq[Window], error) {
	if total < 0 {
		return nil, fmt.Errorf("total must be >= 0 (got %d)", total)
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("page size must be in [1, %d] (got %d)", MaxPageSize, pageSize)
	}

	fullPages := total / pageSize
	remainder := total % pageSize

	return func(yield func(Window) bool) {
		for q := 0; q < fullPages; q++ {
			if !yield(Window{Offset: q * pageSize, Limit: pageSize}) {
				return
			}
		}
		if remainder > 0 {
			yield(Window{Offset: total - remainder, Limit: remainder})
		}
	}, nil
}

// PageCount returns how many windows Plan produces.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	n := total / pageSize
	if total%pageSize > 0 {
		n++
	}
	return n
}
