package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceJobID(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  int
		ok    bool
	}{
		{"plain int", 716, 716, true},
		{"json number", float64(716), 716, true},
		{"numeric string", "716", 716, true},
		{"decorated string", "job_716", 716, true},
		{"padded string", "  42  ", 42, true},
		{"no digits", "unknown", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"list", []interface{}{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceJobID(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.InDelta(t, 0.85, ClampScore(85), 1e-9)
	assert.InDelta(t, 0.85, ClampScore(0.85), 1e-9)
	assert.Equal(t, 1.0, ClampScore(1.0))
	assert.Equal(t, 1.0, ClampScore(150))
	assert.Equal(t, 0.0, ClampScore(-0.3))
	assert.Equal(t, 0.0, ClampScore(0))
}

func TestCoerceStringList(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, CoerceStringList([]interface{}{"Go", "SQL"}))
	assert.Equal(t, []string{"Go"}, CoerceStringList([]string{"Go"}))
	// Non-list shapes collapse to an empty list, never an error.
	assert.Equal(t, []string{}, CoerceStringList("Go"))
	assert.Equal(t, []string{}, CoerceStringList(nil))
	assert.Equal(t, []string{}, CoerceStringList(42))
	// Non-string members are skipped.
	assert.Equal(t, []string{"Go"}, CoerceStringList([]interface{}{"Go", 7}))
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2022-01-01", NormalizeDate("2022-01-01"))
	assert.Equal(t, "Present", NormalizeDate("Present"))
	assert.Equal(t, "Present", NormalizeDate("present"))
	assert.Equal(t, "Present", NormalizeDate(""))
	assert.Equal(t, "", NormalizeDate("not a date"))
}

func TestNormalizeDeadline(t *testing.T) {
	// Day-first: 09/10/2025 is October 9th, not September 10th.
	assert.Equal(t, "2025-10-09", NormalizeDeadline("09/10/2025"))
	assert.Equal(t, "2025-10-09", NormalizeDeadline("2025-10-09"))
	assert.Equal(t, "", NormalizeDeadline(""))
	assert.Equal(t, "", NormalizeDeadline("N/A"))
	assert.Equal(t, "", NormalizeDeadline("none"))
	assert.Equal(t, "", NormalizeDeadline("no deadline given"))
}
