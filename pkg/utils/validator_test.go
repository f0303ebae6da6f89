package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("dana_v1"))
	assert.Error(t, ValidateUsername("ab"), "too short")
	assert.Error(t, ValidateUsername("this_name_is_way_too_long"), "too long")
	assert.Error(t, ValidateUsername("dana v"), "spaces not allowed")
	assert.Error(t, ValidateUsername("dana!"), "punctuation not allowed")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword("12345"))
}

func TestParseEventDate(t *testing.T) {
	cases := map[string]time.Time{
		"2026-09-15T16:00:00Z": time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC),
		"2026-09-15T16:00":     time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC),
		"2026-09-15 16:00":     time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC),
		"2026-09-15":           time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := ParseEventDate(input)
		require.NoError(t, err, input)
		assert.True(t, got.Equal(want), input)
	}
}

func TestParseEventDateRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "soon", "15/09/2026", "2026-13-40"} {
		_, err := ParseEventDate(input)
		assert.Error(t, err, input)
	}
}
