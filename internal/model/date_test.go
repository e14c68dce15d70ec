package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		d, err := ParseDate("2024-06-05")
		require.NoError(t, err)
		assert.Equal(t, Date("2024-06-05"), d)
	})

	t.Run("rfc3339 truncates to utc day", func(t *testing.T) {
		d, err := ParseDate("2024-06-05T23:30:00+05:30")
		require.NoError(t, err)
		// 23:30 at +05:30 is 18:00 UTC, still the 5th.
		assert.Equal(t, Date("2024-06-05"), d)

		d, err = ParseDate("2024-06-05T01:00:00+05:30")
		require.NoError(t, err)
		// 01:00 at +05:30 is 19:30 UTC of the previous day.
		assert.Equal(t, Date("2024-06-04"), d)
	})

	t.Run("same day different spellings compare equal", func(t *testing.T) {
		a, err := ParseDate("2024-06-05")
		require.NoError(t, err)
		b, err := ParseDate("2024-06-05T10:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		for _, s := range []string{"", "yesterday", "06/05/2024", "2024-13-01"} {
			_, err := ParseDate(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestDateOrdering(t *testing.T) {
	a := Date("2024-06-05")
	b := Date("2024-06-06")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2024, 6, 6, 2, 0, 0, 0, loc) // 20:30 UTC on the 5th
	assert.Equal(t, Date("2024-06-05"), DateOf(at))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd Date
		want                       bool
	}{
		{"disjoint before", "2024-06-01", "2024-06-03", "2024-06-05", "2024-06-08", false},
		{"disjoint after", "2024-06-10", "2024-06-12", "2024-06-05", "2024-06-08", false},
		{"touching endpoints conflict", "2024-06-01", "2024-06-05", "2024-06-05", "2024-06-08", true},
		{"adjacent days do not", "2024-06-01", "2024-06-05", "2024-06-06", "2024-06-08", false},
		{"contained", "2024-06-02", "2024-06-03", "2024-06-01", "2024-06-08", true},
		{"containing", "2024-06-01", "2024-06-08", "2024-06-02", "2024-06-03", true},
		{"partial", "2024-06-04", "2024-06-06", "2024-06-05", "2024-06-08", true},
		{"single day vs itself", "2024-06-05", "2024-06-05", "2024-06-05", "2024-06-05", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 1, DaysInclusive("2024-06-05", "2024-06-05"))
	assert.Equal(t, 3, DaysInclusive("2024-06-01", "2024-06-03"))
	assert.Equal(t, 31, DaysInclusive("2024-01-01", "2024-01-31"))
	// Crosses a month boundary.
	assert.Equal(t, 2, DaysInclusive("2024-02-29", "2024-03-01"))
}
