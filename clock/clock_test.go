// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, min, sec, nsec int) Clock {
	return Fixed(time.Date(year, month, day, hour, min, sec, nsec, Reference))
}

func TestIsLocked(t *testing.T) {
	tests := []struct {
		name   string
		clock  Clock
		date   string
		locked bool
	}{
		{"morning of the meeting", at(2025, 3, 4, 9, 0, 0, 0), "2025-03-04", false},
		{"last second of the day", at(2025, 3, 4, 23, 59, 59, 0), "2025-03-04", false},
		{"sub-second past the end is truncated", at(2025, 3, 4, 23, 59, 59, 900_000_000), "2025-03-04", false},
		{"midnight after the meeting", at(2025, 3, 5, 0, 0, 0, 0), "2025-03-04", true},
		{"day before", at(2025, 3, 3, 12, 0, 0, 0), "2025-03-04", false},
		{"week later", at(2025, 3, 11, 12, 0, 0, 0), "2025-03-04", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locked, err := IsLocked(tt.clock, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.locked, locked)
		})
	}
}

func TestIsLocked_UsesReferenceZone(t *testing.T) {
	// 03:30 UTC on the 5th is still 22:30 (EST) on the 4th.
	c := Fixed(time.Date(2025, 3, 5, 3, 30, 0, 0, time.UTC))

	locked, err := IsLocked(c, "2025-03-04")
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Equal(t, "2025-03-04", Today(c))
}

func TestIsLocked_InvalidDate(t *testing.T) {
	_, err := IsLocked(System{}, "03/04/2025")
	assert.Error(t, err)
}

func TestStamp(t *testing.T) {
	c := at(2025, 7, 1, 18, 5, 9, 123)
	assert.Equal(t, "2025-07-01 18:05:09", Stamp(c))
	assert.Equal(t, "2025-07-01", Today(c))
}
