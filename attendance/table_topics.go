// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/club-checkin/apperr"
	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/db"
	"github.com/danielhkuo/club-checkin/metrics"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/store"
)

// errAlreadyAdded aborts the toggle transaction when a concurrent toggle
// inserted the marker first.
var errAlreadyAdded = errors.New("table topics marker already added")

// ToggleTableTopics adds the participant to the meeting's table-topics
// speakers, or removes them if already there. Once the meeting is locked
// only admins may toggle.
func (s *Service) ToggleTableTopics(ctx context.Context, meetingID int64, memberID, guestID models.FlexID, p *auth.Principal) (string, error) {
	if meetingID <= 0 {
		return "", apperr.BadRequest("meeting_id is required")
	}
	m, err := meeting(ctx, s.store.Queries, meetingID)
	if err != nil {
		return "", err
	}

	participant, ok := models.ParticipantFrom(memberID, guestID)
	if !ok {
		return "", apperr.BadRequest("member_id or guest_id is required")
	}

	locked, err := clock.IsLocked(s.clock, m.Date)
	if err != nil {
		return "", apperr.Internal("Database error", err)
	}
	if locked && !p.IsAdmin() {
		return "", apperr.Forbidden("Table topics is locked for this meeting")
	}

	var action string
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		checkedIn, err := q.HasAttendance(ctx, meetingID, participant)
		if err != nil {
			return err
		}
		if !checkedIn {
			return apperr.BadRequest("Person is not checked in to this meeting")
		}

		existing, err := q.HasTableTopics(ctx, meetingID, participant)
		if err != nil {
			return err
		}
		if existing {
			if _, err := q.DeleteTableTopics(ctx, meetingID, participant); err != nil {
				return err
			}
			action = models.ToggleRemoved
			return nil
		}

		if err := q.InsertTableTopics(ctx, meetingID, participant); err != nil {
			if db.IsUniqueViolation(err) {
				return errAlreadyAdded
			}
			return err
		}
		action = models.ToggleAdded
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errAlreadyAdded):
		slog.Warn("table topics marker added concurrently", "meeting_id", meetingID, "type", participant.Kind, "id", participant.ID)
		action = models.ToggleAdded
	case apperr.KindOf(err) != apperr.KindInternal:
		return "", err
	case db.IsForeignKeyViolation(err):
		return "", apperr.NotFound("Meeting or participant no longer exists")
	default:
		return "", apperr.Internal("Failed to toggle table topics", err)
	}

	metrics.TableTopicsTogglesTotal.WithLabelValues(action).Inc()
	slog.Info("table topics toggled", "meeting_id", meetingID, "type", participant.Kind, "id", participant.ID, "action", action)
	return action, nil
}
