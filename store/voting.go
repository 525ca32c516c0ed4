// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/club-checkin/models"
)

// GetSession returns the meeting's voting session. With lock set the row
// is held until the surrounding transaction ends.
func (q *Queries) GetSession(ctx context.Context, meetingID int64, lock bool) (*models.VotingSession, error) {
	query := `
		SELECT meeting_id, status, opened_at, closed_at
		FROM voting_sessions
		WHERE meeting_id = $1`
	if lock {
		query += q.forUpdate()
	}

	var s models.VotingSession
	err := q.q.QueryRowContext(ctx, query, meetingID).Scan(&s.MeetingID, &s.Status, &s.OpenedAt, &s.ClosedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get voting session: %w", err)
	}
	return &s, nil
}

// OpenSession creates or reopens the session and clears closed_at.
func (q *Queries) OpenSession(ctx context.Context, meetingID int64, openedAt string) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO voting_sessions (meeting_id, status, opened_at, closed_at)
		VALUES ($1, 'open', $2, NULL)
		ON CONFLICT (meeting_id) DO UPDATE
		SET status = 'open', opened_at = excluded.opened_at, closed_at = NULL
	`, meetingID, openedAt)
	if err != nil {
		return fmt.Errorf("open voting session: %w", err)
	}
	return nil
}

// CloseSession marks the session closed. It reports whether a row existed.
func (q *Queries) CloseSession(ctx context.Context, meetingID int64, closedAt string) (bool, error) {
	res, err := q.q.ExecContext(ctx, `
		UPDATE voting_sessions SET status = 'closed', closed_at = $1 WHERE meeting_id = $2
	`, closedAt, meetingID)
	if err != nil {
		return false, fmt.Errorf("close voting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close voting session: %w", err)
	}
	return n > 0, nil
}

func (q *Queries) DeleteVotes(ctx context.Context, meetingID int64) (int64, error) {
	res, err := q.q.ExecContext(ctx, `DELETE FROM votes WHERE meeting_id = $1`, meetingID)
	if err != nil {
		return 0, fmt.Errorf("delete votes: %w", err)
	}
	return res.RowsAffected()
}

func (q *Queries) HasBallot(ctx context.Context, meetingID int64, voterToken string) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM votes WHERE meeting_id = $1 AND voter_token = $2
		)
	`, meetingID, voterToken).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ballot: %w", err)
	}
	return exists, nil
}

func (q *Queries) InsertVote(ctx context.Context, meetingID int64, v models.Vote, voterToken, createdAt string) error {
	memberID, guestID := refArgs(v.Nominee)
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO votes (meeting_id, category, nominee_member_id, nominee_guest_id, rank, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, meetingID, string(v.Category), memberID, guestID, v.Rank, voterToken, createdAt)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// CountVoters counts distinct voter tokens.
func (q *Queries) CountVoters(ctx context.Context, meetingID int64) (int, error) {
	var n int
	err := q.q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT voter_token) FROM votes WHERE meeting_id = $1
	`, meetingID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return n, nil
}

// ListVotes returns every ranked row for the meeting with nominee names.
func (q *Queries) ListVotes(ctx context.Context, meetingID int64) ([]models.Vote, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT v.category, v.nominee_member_id, v.nominee_guest_id, v.rank,
		       COALESCE(m.name, g.name, '')
		FROM votes v
		LEFT JOIN members m ON v.nominee_member_id = m.id
		LEFT JOIN guests g ON v.nominee_guest_id = g.id
		WHERE v.meeting_id = $1
		ORDER BY v.id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var (
			v                 models.Vote
			category          string
			memberID, guestID sql.NullInt64
		)
		if err := rows.Scan(&category, &memberID, &guestID, &v.Rank, &v.Name); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		p, err := participantFrom(memberID, guestID)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.Category = models.Category(category)
		v.Nominee = p
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

// Nominees derives the nominee set of one category from the meeting's
// program: speeches, evaluator slots, and table-topics speakers.
func (q *Queries) Nominees(ctx context.Context, meetingID int64, category models.Category) ([]models.Nominee, error) {
	var query string
	switch category {
	case models.CategorySpeaker:
		query = `
			SELECT DISTINCT m.id, CAST(NULL AS BIGINT), m.name
			FROM speeches s
			JOIN members m ON s.speaker_id = m.id
			WHERE s.meeting_id = $1
			ORDER BY m.name, m.id`
	case models.CategoryEvaluator:
		query = `
			SELECT DISTINCT m.id, CAST(NULL AS BIGINT), m.name
			FROM evaluators e
			JOIN members m ON e.member_id = m.id
			WHERE e.meeting_id = $1
			ORDER BY m.name, m.id`
	case models.CategoryTableTopics:
		query = `
			SELECT tt.member_id, tt.guest_id, COALESCE(m.name, g.name, '')
			FROM table_topics_speakers tt
			LEFT JOIN members m ON tt.member_id = m.id
			LEFT JOIN guests g ON tt.guest_id = g.id
			WHERE tt.meeting_id = $1
			ORDER BY tt.id`
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}

	rows, err := q.q.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list %s nominees: %w", category, err)
	}
	defer rows.Close()

	nominees := []models.Nominee{}
	for rows.Next() {
		var (
			n                 models.Nominee
			memberID, guestID sql.NullInt64
		)
		if err := rows.Scan(&memberID, &guestID, &n.Name); err != nil {
			return nil, fmt.Errorf("scan nominee: %w", err)
		}
		p, err := participantFrom(memberID, guestID)
		if err != nil {
			return nil, fmt.Errorf("scan nominee: %w", err)
		}
		n.MemberID = p.MemberID()
		n.GuestID = p.GuestID()
		nominees = append(nominees, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s nominees: %w", category, err)
	}
	return nominees, nil
}
