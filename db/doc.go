// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and constraint errors.

# Connections

	conn, err := db.Open(db.SQLite, "club.db")
	conn, err := db.Open(db.Postgres, "postgres://...")

sqlite connections enable foreign keys and a busy timeout, and are limited
to one open connection.

# Schema Creation

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - members, meetings, speeches, evaluators: maintained elsewhere, read here
  - guests: created on first guest check-in, unique by email
  - attendance: one row per member or guest per meeting
  - table_topics_speakers: subset of attendance
  - voting_sessions: at most one per meeting
  - votes: ranked ballot rows grouped by voter_token

Attendance, table-topics and vote rows reference exactly one of a member or
a guest. The schema enforces this with a CHECK constraint and the
per-meeting uniqueness with UNIQUE constraints.

# Constraint Errors

IsUniqueViolation and IsForeignKeyViolation recognise both lib/pq and
modernc sqlite errors.
*/
package db
