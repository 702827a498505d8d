package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFilter is returned by ParseFilter for values outside the three
// known filters.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter selects which photos are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPrinted   Filter = "printed"
	FilterUnprinted Filter = "unprinted"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterUnprinted, FilterPrinted}

// ParseFilter maps a user supplied value to a Filter. The empty string is All.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPrinted:
		return FilterPrinted, nil
	case FilterUnprinted:
		return FilterUnprinted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Label is the button caption for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterPrinted:
		return "Printed"
	case FilterUnprinted:
		return "Unprinted"
	default:
		return "All"
	}
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Photo) bool {
	switch f {
	case FilterPrinted:
		return p.Printed
	case FilterUnprinted:
		return !p.Printed
	default:
		return true
	}
}

// Apply returns the photos matching f, preserving their order. The input
// slice is never modified.
func (f Filter) Apply(photos []Photo) []Photo {
	out := make([]Photo, 0, len(photos))
	for _, p := range photos {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
