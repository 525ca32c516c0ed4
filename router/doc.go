// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the club check-in API.

# Route Registration

	mux := router.NewRouter(conn, cfg, clock.System{})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Attendance (bearer token optional unless noted):

	GET    /api/attendance?meeting_id=     - Attendance list and lock flag
	POST   /api/attendance                 - Check in a member or guest
	DELETE /api/attendance                 - Remove attendance (admin)
	POST   /api/attendance/table-topics    - Toggle table-topics speaker

Voting:

	GET  /api/voting?meeting_id= - Session status, nominees and results
	POST /api/voting             - open, close (admin) or vote
	POST /api/voting/token       - Mint an anonymous voter token

Every API route is wrapped with WithLogging and WithMetrics.
*/
package router
