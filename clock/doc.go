// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package clock decides when a meeting locks.

A meeting locks once the wall clock in the reference zone (America/New_York)
passes 23:59:59 on the meeting's calendar date:

	locked, err := clock.IsLocked(clock.System{}, "2025-03-04")

Both sides of the comparison are naive wall-clock instants. The current time
is converted into the reference zone and read as a wall clock; the meeting
end is the literal string date + "T23:59:59". No other zone arithmetic is
applied, so existing lock boundaries stay where they are.

Handlers and services take a Clock so tests can pin "now":

	c := clock.Fixed(time.Date(2025, 3, 4, 20, 0, 0, 0, clock.Reference))
*/
package clock
