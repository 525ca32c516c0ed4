// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	_, err := db.Exec(Schema(dialect))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema returns the DDL for the given dialect. Only the surrogate key
// column differs between postgres and sqlite.
func Schema(dialect Dialect) string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	return fmt.Sprintf(schema, id)
}

// Timestamps are reference-zone naive text written by the application.
const schema = `
-- Members (managed elsewhere)
CREATE TABLE IF NOT EXISTS members (
    id %[1]s,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('member', 'admin')),
    is_active INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_members_email_lower ON members(LOWER(email));

-- Meetings (managed elsewhere)
CREATE TABLE IF NOT EXISTS meetings (
    id %[1]s,
    date TEXT NOT NULL,
    theme TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'scheduled'
);

-- Guests
CREATE TABLE IF NOT EXISTS guests (
    id %[1]s,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    phone TEXT,
    created_at TEXT NOT NULL
);

-- Speeches and evaluator slots (managed elsewhere, read for nominees)
CREATE TABLE IF NOT EXISTS speeches (
    id %[1]s,
    meeting_id BIGINT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
    speaker_id BIGINT REFERENCES members(id) ON DELETE SET NULL,
    speech_title TEXT
);

CREATE INDEX IF NOT EXISTS idx_speeches_meeting_id ON speeches(meeting_id);

CREATE TABLE IF NOT EXISTS evaluators (
    id %[1]s,
    meeting_id BIGINT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
    slot_number INTEGER NOT NULL,
    member_id BIGINT REFERENCES members(id) ON DELETE SET NULL,
    UNIQUE (meeting_id, slot_number)
);

-- Attendance: one row per participant per meeting
CREATE TABLE IF NOT EXISTS attendance (
    id %[1]s,
    meeting_id BIGINT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
    member_id BIGINT REFERENCES members(id) ON DELETE CASCADE,
    guest_id BIGINT REFERENCES guests(id) ON DELETE CASCADE,
    checked_in_at TEXT NOT NULL,
    CHECK ((member_id IS NULL) <> (guest_id IS NULL)),
    UNIQUE (meeting_id, member_id),
    UNIQUE (meeting_id, guest_id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_meeting_id ON attendance(meeting_id);

-- Table topics speakers: subset of attendance
CREATE TABLE IF NOT EXISTS table_topics_speakers (
    id %[1]s,
    meeting_id BIGINT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
    member_id BIGINT REFERENCES members(id) ON DELETE CASCADE,
    guest_id BIGINT REFERENCES guests(id) ON DELETE CASCADE,
    CHECK ((member_id IS NULL) <> (guest_id IS NULL)),
    UNIQUE (meeting_id, member_id),
    UNIQUE (meeting_id, guest_id)
);

-- Voting sessions: one per meeting
CREATE TABLE IF NOT EXISTS voting_sessions (
    id %[1]s,
    meeting_id BIGINT NOT NULL UNIQUE REFERENCES meetings(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'closed' CHECK (status IN ('open', 'closed')),
    opened_at TEXT,
    closed_at TEXT
);

-- Votes: immutable ranked rows, grouped into ballots by voter_token
CREATE TABLE IF NOT EXISTS votes (
    id %[1]s,
    meeting_id BIGINT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
    category TEXT NOT NULL CHECK (category IN ('speaker', 'evaluator', 'table_topics')),
    nominee_member_id BIGINT REFERENCES members(id) ON DELETE CASCADE,
    nominee_guest_id BIGINT REFERENCES guests(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL CHECK (rank >= 1),
    voter_token TEXT NOT NULL,
    created_at TEXT NOT NULL,
    CHECK ((nominee_member_id IS NULL) <> (nominee_guest_id IS NULL)),
    UNIQUE (meeting_id, voter_token, category, rank)
);

CREATE INDEX IF NOT EXISTS idx_votes_meeting_category ON votes(meeting_id, category);
CREATE INDEX IF NOT EXISTS idx_votes_voter_token ON votes(meeting_id, voter_token);
`
