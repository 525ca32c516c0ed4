// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the club check-in API server.

The server handles meeting attendance (member and guest check-in), the
table-topics speaker list, and the end-of-meeting award vote for a
Toastmasters club.

# Starting the Server

	DATABASE_URL=club.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - JWT_SECRET (--jwt-secret): HMAC secret for member bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REFERENCE_TZ (--tz): Club time zone (default: America/New_York)

A .env file in the working directory is loaded first if present.

# Architecture

  - handlers: HTTP request handlers (attendance, voting)
  - attendance, voting: Check-in, table topics and award voting rules
  - store: SQL queries shared by both
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Request/response and domain types
  - auth: Bearer token verification and voter tokens
  - clock: Reference time zone and the end-of-day lock
  - apperr: Error kinds and their HTTP status codes
  - metrics: Prometheus collectors
  - db: Connection setup, schema creation, constraint errors
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
