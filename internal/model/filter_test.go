package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePhotos() []Photo {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []Photo{
		{ID: "e", Printed: false, CreatedAt: base.Add(4 * time.Minute)},
		{ID: "d", Printed: true, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "c", Printed: false, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", Printed: true, CreatedAt: base.Add(1 * time.Minute)},
		{ID: "a", Printed: false, CreatedAt: base},
	}
}

func ids(photos []Photo) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	photos := samplePhotos()

	testCases := []struct {
		filter   Filter
		expected []string
	}{
		{filter: FilterAll, expected: []string{"e", "d", "c", "b", "a"}},
		{filter: FilterPrinted, expected: []string{"d", "b"}},
		{filter: FilterUnprinted, expected: []string{"e", "c", "a"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.filter), func(t *testing.T) {
			got := tc.filter.Apply(photos)
			assert.Equal(t, tc.expected, ids(got))
			for _, p := range got {
				assert.True(t, tc.filter.Match(p))
			}
		})
	}

	// Input must be left untouched.
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, ids(photos))
}

func TestFilter_ApplyEmpty(t *testing.T) {
	for _, f := range Filters {
		assert.Empty(t, f.Apply(nil))
	}
	assert.Empty(t, FilterPrinted.Apply([]Photo{{ID: "x"}}))
}

func TestParseFilter(t *testing.T) {
	testCases := []struct {
		in       string
		expected Filter
	}{
		{in: "", expected: FilterAll},
		{in: "all", expected: FilterAll},
		{in: "Printed", expected: FilterPrinted},
		{in: " unprinted ", expected: FilterUnprinted},
	}
	for _, tc := range testCases {
		got, err := ParseFilter(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got)
	}

	_, err := ParseFilter("archived")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestFilter_Label(t *testing.T) {
	assert.Equal(t, "All", FilterAll.Label())
	assert.Equal(t, "Printed", FilterPrinted.Label())
	assert.Equal(t, "Unprinted", FilterUnprinted.Label())
}
