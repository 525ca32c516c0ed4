// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/club-checkin/apperr"
	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/db"
	"github.com/danielhkuo/club-checkin/metrics"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/store"
)

type Service struct {
	store *store.Store
	clock clock.Clock
}

func NewService(st *store.Store, c clock.Clock) *Service {
	return &Service{store: st, clock: c}
}

type CheckInInput struct {
	MeetingID        int64
	Principal        *auth.Principal
	GuestName        string
	GuestEmail       string
	GuestPhone       string
	AdminMemberEmail string
}

type CheckInResult struct {
	Type      models.ParticipantKind
	Name      string
	Returning *bool // guests only
}

// CheckIn records at most one attendance row for the resolved participant.
// Resolution order: admin-assisted member lookup, then the authenticated
// member, then a guest by email.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	if in.MeetingID <= 0 {
		return nil, apperr.BadRequest("meeting_id is required")
	}
	if _, err := meeting(ctx, s.store.Queries, in.MeetingID); err != nil {
		return nil, err
	}

	var result *CheckInResult
	var err error
	switch {
	case in.AdminMemberEmail != "" && in.Principal.IsAdmin():
		result, err = s.checkInByEmail(ctx, in.MeetingID, in.AdminMemberEmail)
	case in.Principal != nil:
		result, err = s.checkInPrincipal(ctx, in.MeetingID, in.Principal)
	default:
		result, err = s.checkInGuest(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	metrics.CheckInsTotal.WithLabelValues(string(result.Type)).Inc()
	slog.Info("checked in", "meeting_id", in.MeetingID, "type", result.Type, "name", result.Name)
	return result, nil
}

func (s *Service) checkInByEmail(ctx context.Context, meetingID int64, email string) (*CheckInResult, error) {
	member, err := s.store.FindMemberByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Member not found with that email")
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}

	if err := s.record(ctx, meetingID, models.Member(member.ID), "Member already checked in"); err != nil {
		return nil, err
	}
	return &CheckInResult{Type: models.KindMember, Name: member.Name}, nil
}

func (s *Service) checkInPrincipal(ctx context.Context, meetingID int64, p *auth.Principal) (*CheckInResult, error) {
	member, err := s.store.GetMember(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Member not found")
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}

	if err := s.record(ctx, meetingID, models.Member(member.ID), "Already checked in"); err != nil {
		return nil, err
	}
	return &CheckInResult{Type: models.KindMember, Name: member.Name}, nil
}

func (s *Service) checkInGuest(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	email := strings.TrimSpace(in.GuestEmail)
	if email == "" {
		return nil, apperr.BadRequest("Email is required for guest check-in")
	}

	guest, returning, err := s.resolveGuest(ctx, email, strings.TrimSpace(in.GuestName), strings.TrimSpace(in.GuestPhone))
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, in.MeetingID, models.Guest(guest.ID), "Already checked in"); err != nil {
		return nil, err
	}
	return &CheckInResult{Type: models.KindGuest, Name: guest.Name, Returning: &returning}, nil
}

// resolveGuest finds the guest by exact email or creates one. returning is
// true when the record already existed.
func (s *Service) resolveGuest(ctx context.Context, email, name, phone string) (*models.GuestRecord, bool, error) {
	guest, err := s.store.FindGuestByEmail(ctx, email)
	if err == nil {
		return guest, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.Internal("Database error", err)
	}

	if name == "" {
		return nil, false, apperr.BadRequest("Name is required for new guests")
	}

	var phonePtr *string
	if phone != "" {
		phonePtr = &phone
	}

	id, err := s.store.CreateGuest(ctx, name, email, phonePtr, clock.Stamp(s.clock))
	if err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, false, apperr.Internal("Database error", err)
		}
		// Another request created the same guest first
		slog.Warn("guest created concurrently", "email", email)
		guest, err = s.store.FindGuestByEmail(ctx, email)
		if err != nil {
			return nil, false, apperr.Internal("Database error", err)
		}
		return guest, true, nil
	}

	return &models.GuestRecord{ID: id, Name: name, Email: email, Phone: phonePtr}, false, nil
}

// record inserts attendance unless the participant is already present.
// The uniqueness constraint settles concurrent inserts.
func (s *Service) record(ctx context.Context, meetingID int64, p models.Participant, duplicateMsg string) error {
	exists, err := s.store.HasAttendance(ctx, meetingID, p)
	if err != nil {
		return apperr.Internal("Database error", err)
	}
	if exists {
		return apperr.Conflict(duplicateMsg)
	}

	err = s.store.InsertAttendance(ctx, meetingID, p, clock.Stamp(s.clock))
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return apperr.Conflict(duplicateMsg)
	case db.IsForeignKeyViolation(err):
		return apperr.NotFound("Meeting or participant no longer exists")
	default:
		return apperr.Internal("Failed to check in", err)
	}
}

// List returns the meeting's attendance. Guest contact details are only
// included for admins.
func (s *Service) List(ctx context.Context, meetingID int64, p *auth.Principal) (*models.AttendanceListResponse, error) {
	if meetingID <= 0 {
		return nil, apperr.BadRequest("meeting_id is required")
	}
	m, err := meeting(ctx, s.store.Queries, meetingID)
	if err != nil {
		return nil, err
	}
	locked, err := clock.IsLocked(s.clock, m.Date)
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}

	entries, err := s.store.ListAttendance(ctx, meetingID)
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	if !p.IsAdmin() {
		for i := range entries {
			entries[i].Email = nil
			entries[i].Phone = nil
		}
	}

	return &models.AttendanceListResponse{Attendance: entries, IsLocked: locked}, nil
}

// Remove deletes a participant's attendance together with any table-topics
// marker. Admin only.
func (s *Service) Remove(ctx context.Context, meetingID int64, memberID, guestID models.FlexID, p *auth.Principal) error {
	if meetingID <= 0 {
		return apperr.BadRequest("meeting_id is required")
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	participant, ok := models.ParticipantFrom(memberID, guestID)
	if !ok {
		return apperr.BadRequest("member_id or guest_id is required")
	}

	err := s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.DeleteTableTopics(ctx, meetingID, participant); err != nil {
			return err
		}
		_, err := q.DeleteAttendance(ctx, meetingID, participant)
		return err
	})
	if err != nil {
		return apperr.Internal("Failed to remove attendance", err)
	}

	slog.Info("attendance removed", "meeting_id", meetingID, "type", participant.Kind, "id", participant.ID)
	return nil
}

func meeting(ctx context.Context, q *store.Queries, id int64) (*models.Meeting, error) {
	m, err := q.GetMeeting(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Meeting not found")
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	return m, nil
}
