// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the club check-in API.

Handlers decode requests, resolve the optional bearer identity and hand off
to the attendance and voting services. Errors come back as apperr values and
are written with middleware.WriteError.

	attendanceHandler := handlers.NewAttendanceHandler(st, resolver, clock.System{})
	votingHandler := handlers.NewVotingHandler(st, resolver, clock.System{})

Ids (meeting_id, member_id, guest_id) are accepted as JSON numbers or
numeric strings. For DELETE /api/attendance and the table-topics toggle they
may also be given in the query string.
*/
package handlers
