package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims, dedupes and drops empties",
			input:    []string{"  /wallet ", "/bets", "/wallet", "", "  "},
			expected: []string{"/wallet", "/bets"},
		},
		{
			name:     "preserves case",
			input:    []string{"CF-IPCountry", "cf-ipcountry"},
			expected: []string{"CF-IPCountry", "cf-ipcountry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimUpper(t *testing.T) {
	got := DedupeAndTrimUpper([]string{" us-ny", "US-NY", "ca-qc ", ""})
	assert.Equal(t, []string{"US-NY", "CA-QC"}, got)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, SplitList("k1:9092, k2:9092,k1:9092,"))
}
