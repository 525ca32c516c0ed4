// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/club-checkin/models"
)

func (q *Queries) HasAttendance(ctx context.Context, meetingID int64, p models.Participant) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM attendance WHERE meeting_id = $1 AND `+refColumn(p)+` = $2
		)
	`, meetingID, p.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return exists, nil
}

// InsertAttendance relies on UNIQUE(meeting_id, member_id|guest_id); a
// racing duplicate surfaces as a unique violation.
func (q *Queries) InsertAttendance(ctx context.Context, meetingID int64, p models.Participant, checkedInAt string) error {
	memberID, guestID := refArgs(p)
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO attendance (meeting_id, member_id, guest_id, checked_in_at)
		VALUES ($1, $2, $3, $4)
	`, meetingID, memberID, guestID, checkedInAt)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (q *Queries) DeleteAttendance(ctx context.Context, meetingID int64, p models.Participant) (int64, error) {
	res, err := q.q.ExecContext(ctx, `
		DELETE FROM attendance WHERE meeting_id = $1 AND `+refColumn(p)+` = $2
	`, meetingID, p.ID)
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return res.RowsAffected()
}

func (q *Queries) CountAttendance(ctx context.Context, meetingID int64) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance WHERE meeting_id = $1
	`, meetingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return n, nil
}

// ListAttendance returns every check-in for the meeting in check-in order,
// guest contact details included.
func (q *Queries) ListAttendance(ctx context.Context, meetingID int64) ([]models.AttendanceEntry, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT
			a.id,
			a.meeting_id,
			a.member_id,
			a.guest_id,
			a.checked_in_at,
			COALESCE(m.name, g.name, ''),
			g.email,
			g.phone,
			CASE WHEN tt.id IS NOT NULL THEN 1 ELSE 0 END
		FROM attendance a
		LEFT JOIN members m ON a.member_id = m.id
		LEFT JOIN guests g ON a.guest_id = g.id
		LEFT JOIN table_topics_speakers tt ON a.meeting_id = tt.meeting_id
			AND (a.member_id = tt.member_id OR a.guest_id = tt.guest_id)
		WHERE a.meeting_id = $1
		ORDER BY a.checked_in_at ASC, a.id ASC
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	entries := []models.AttendanceEntry{}
	for rows.Next() {
		var (
			e                 models.AttendanceEntry
			memberID, guestID sql.NullInt64
			tableTopics       int
		)
		if err := rows.Scan(&e.ID, &e.MeetingID, &memberID, &guestID, &e.CheckedInAt,
			&e.Name, &e.Email, &e.Phone, &tableTopics); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		p, err := participantFrom(memberID, guestID)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		e.MemberID = p.MemberID()
		e.GuestID = p.GuestID()
		e.Type = string(p.Kind)
		e.IsTableTopicsSpeaker = tableTopics == 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return entries, nil
}

// Table topics

func (q *Queries) HasTableTopics(ctx context.Context, meetingID int64, p models.Participant) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM table_topics_speakers WHERE meeting_id = $1 AND `+refColumn(p)+` = $2
		)
	`, meetingID, p.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table topics: %w", err)
	}
	return exists, nil
}

func (q *Queries) InsertTableTopics(ctx context.Context, meetingID int64, p models.Participant) error {
	memberID, guestID := refArgs(p)
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO table_topics_speakers (meeting_id, member_id, guest_id)
		VALUES ($1, $2, $3)
	`, meetingID, memberID, guestID)
	if err != nil {
		return fmt.Errorf("insert table topics: %w", err)
	}
	return nil
}

func (q *Queries) DeleteTableTopics(ctx context.Context, meetingID int64, p models.Participant) (int64, error) {
	res, err := q.q.ExecContext(ctx, `
		DELETE FROM table_topics_speakers WHERE meeting_id = $1 AND `+refColumn(p)+` = $2
	`, meetingID, p.ID)
	if err != nil {
		return 0, fmt.Errorf("delete table topics: %w", err)
	}
	return res.RowsAffected()
}
