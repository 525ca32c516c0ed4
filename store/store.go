// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/club-checkin/db"
	"github.com/danielhkuo/club-checkin/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs statements against either the pool or a transaction.
type Queries struct {
	q       querier
	dialect db.Dialect
}

// Store is the persistence gateway.
type Store struct {
	*Queries
	conn *sql.DB
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		Queries: &Queries{q: conn, dialect: dialect},
		conn:    conn,
	}
}

// InTx runs fn inside a transaction. fn's error rolls the transaction back
// and is returned unchanged.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{q: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// forUpdate returns the row-lock suffix for SELECTs inside a transaction.
// sqlite has no row locks; its single connection serializes writers.
func (q *Queries) forUpdate() string {
	if q.dialect == db.Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// participant column helpers; the only place a Participant becomes the
// nullable member/guest pair.

func refColumn(p models.Participant) string {
	if p.Kind == models.KindGuest {
		return "guest_id"
	}
	return "member_id"
}

func refArgs(p models.Participant) (memberID, guestID any) {
	if p.Kind == models.KindGuest {
		return nil, p.ID
	}
	return p.ID, nil
}

func participantFrom(memberID, guestID sql.NullInt64) (models.Participant, error) {
	switch {
	case memberID.Valid && !guestID.Valid:
		return models.Member(memberID.Int64), nil
	case guestID.Valid && !memberID.Valid:
		return models.Guest(guestID.Int64), nil
	}
	return models.Participant{}, fmt.Errorf("row has member_id=%v guest_id=%v", memberID, guestID)
}

// Meetings and people

func (q *Queries) GetMeeting(ctx context.Context, id int64) (*models.Meeting, error) {
	var m models.Meeting
	err := q.q.QueryRowContext(ctx, `
		SELECT id, date, theme, status FROM meetings WHERE id = $1
	`, id).Scan(&m.ID, &m.Date, &m.Theme, &m.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return &m, nil
}

func (q *Queries) GetMember(ctx context.Context, id int64) (*models.MemberRecord, error) {
	return q.scanMember(q.q.QueryRowContext(ctx, `
		SELECT id, name, email, role, is_active FROM members WHERE id = $1
	`, id))
}

// FindMemberByEmail matches email case-insensitively.
func (q *Queries) FindMemberByEmail(ctx context.Context, email string) (*models.MemberRecord, error) {
	return q.scanMember(q.q.QueryRowContext(ctx, `
		SELECT id, name, email, role, is_active FROM members WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (q *Queries) scanMember(row *sql.Row) (*models.MemberRecord, error) {
	var m models.MemberRecord
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// FindGuestByEmail matches email exactly.
func (q *Queries) FindGuestByEmail(ctx context.Context, email string) (*models.GuestRecord, error) {
	var g models.GuestRecord
	err := q.q.QueryRowContext(ctx, `
		SELECT id, name, email, phone FROM guests WHERE email = $1
	`, email).Scan(&g.ID, &g.Name, &g.Email, &g.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &g, nil
}

func (q *Queries) CreateGuest(ctx context.Context, name, email string, phone *string, createdAt string) (int64, error) {
	var id int64
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO guests (name, email, phone, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, email, phone, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create guest: %w", err)
	}
	return id, nil
}
