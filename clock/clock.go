// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the storage format for meeting dates.
	DateLayout = "2006-01-02"
	// StampLayout is the storage format for persisted timestamps.
	StampLayout = "2006-01-02 15:04:05"

	endOfDay = "T23:59:59"
)

// Reference is the club's time zone. Every lock and "today" computation uses it.
var Reference *time.Location

func init() {
	var err error
	Reference, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic("clock: load America/New_York: " + err.Error())
	}
}

// SetReference replaces the reference zone. Call it once at startup.
func SetReference(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", name, err)
	}
	Reference = loc
	return nil
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// naiveNow returns the reference-zone wall clock as a zone-less instant,
// truncated to whole seconds.
func naiveNow(c Clock) time.Time {
	n := c.Now().In(Reference).Truncate(time.Second)
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)
}

// IsLocked reports whether the reference-zone wall clock is strictly past
// 23:59:59 on meetingDate. The end-of-day instant is built from the date
// string itself, not from any zone arithmetic.
func IsLocked(c Clock, meetingDate string) (bool, error) {
	end, err := time.Parse(DateLayout+"T15:04:05", meetingDate+endOfDay)
	if err != nil {
		return false, fmt.Errorf("invalid meeting date %q: %w", meetingDate, err)
	}
	return naiveNow(c).After(end), nil
}

// Today returns the reference-zone calendar date as YYYY-MM-DD.
func Today(c Clock) string {
	return naiveNow(c).Format(DateLayout)
}

// Stamp returns the reference-zone wall clock formatted for storage.
func Stamp(c Clock) string {
	return naiveNow(c).Format(StampLayout)
}
