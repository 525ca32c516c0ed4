// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package attendance implements meeting check-in and the table-topics speaker
list.

CheckIn resolves who is arriving in a fixed order: a member looked up by an
admin on their behalf, then the signed-in member, then a guest identified by
email (created on first visit). Each participant has at most one attendance
row per meeting; a second check-in is a Conflict. Check-in is open at any
time once the meeting exists.

ToggleTableTopics flips a checked-in participant on or off the table-topics
speaker list. After the meeting day ends only admins may toggle.
*/
package attendance
