// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
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

// IssueVoterToken mints an anonymous voter token. Tokens are not stored
// until a ballot is cast with them.
func (s *Service) IssueVoterToken() string {
	return auth.GenerateVoterToken()
}

// Status reports the session state, counts, nominees and, once the session
// is closed, the results.
func (s *Service) Status(ctx context.Context, meetingID int64) (*models.VotingStatus, error) {
	if meetingID <= 0 {
		return nil, apperr.BadRequest("meeting_id is required")
	}
	m, err := s.meeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	locked, err := clock.IsLocked(s.clock, m.Date)
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}

	status := &models.VotingStatus{Status: models.StatusClosed, IsLocked: locked}

	session, err := s.store.GetSession(ctx, meetingID, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("Database error", err)
	}
	if session != nil {
		status.Status = session.Status
	}

	if status.AttendanceCount, err = s.store.CountAttendance(ctx, meetingID); err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	if status.VoteCount, err = s.store.CountVoters(ctx, meetingID); err != nil {
		return nil, apperr.Internal("Database error", err)
	}

	nominees, err := nomineeSet(ctx, s.store.Queries, meetingID)
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	status.Nominees = models.NomineeSet{
		Speaker:     nominees[models.CategorySpeaker],
		Evaluator:   nominees[models.CategoryEvaluator],
		TableTopics: nominees[models.CategoryTableTopics],
	}

	if session != nil && session.Status == models.StatusClosed {
		votes, err := s.store.ListVotes(ctx, meetingID)
		if err != nil {
			return nil, apperr.Internal("Database error", err)
		}
		status.Results = Tally(votes)
	}

	return status, nil
}

// Act dispatches a voting action.
func (s *Service) Act(ctx context.Context, req models.VotingActionRequest, p *auth.Principal) (*models.VotingActionResponse, error) {
	meetingID := int64(req.MeetingID)

	switch req.Action {
	case models.ActionOpen:
		if err := s.Open(ctx, meetingID, p); err != nil {
			return nil, err
		}
		return &models.VotingActionResponse{Success: true, Status: models.StatusOpen}, nil
	case models.ActionClose:
		if err := s.Close(ctx, meetingID, p); err != nil {
			return nil, err
		}
		return &models.VotingActionResponse{Success: true, Status: models.StatusClosed}, nil
	case models.ActionVote:
		if err := s.SubmitBallot(ctx, meetingID, req.VoterToken, req.Rankings); err != nil {
			return nil, err
		}
		return &models.VotingActionResponse{Success: true}, nil
	default:
		if _, err := s.unlockedMeeting(ctx, meetingID); err != nil {
			return nil, err
		}
		return nil, apperr.BadRequest("Invalid action")
	}
}

// unlockedMeeting loads the meeting for a voting action. No action is
// accepted once the meeting is locked, whoever the caller is.
func (s *Service) unlockedMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error) {
	if meetingID <= 0 {
		return nil, apperr.BadRequest("meeting_id is required")
	}
	m, err := s.meeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	locked, err := clock.IsLocked(s.clock, m.Date)
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	if locked {
		return nil, apperr.Forbidden("Voting is locked for this meeting")
	}
	return m, nil
}

// Open starts (or restarts) voting and discards every earlier ballot. The
// first open of a meeting must happen on the meeting day.
func (s *Service) Open(ctx context.Context, meetingID int64, p *auth.Principal) error {
	m, err := s.unlockedMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}

	var cleared int64
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		_, err := q.GetSession(ctx, m.ID, true)
		if errors.Is(err, store.ErrNotFound) {
			if clock.Today(s.clock) != m.Date {
				return apperr.Forbidden("Voting can only be opened on the meeting day")
			}
		} else if err != nil {
			return err
		}

		if err := q.OpenSession(ctx, m.ID, clock.Stamp(s.clock)); err != nil {
			return err
		}
		cleared, err = q.DeleteVotes(ctx, m.ID)
		return err
	})
	if err != nil {
		return asInternal(err, "Failed to open voting")
	}

	metrics.VotingTransitionsTotal.WithLabelValues(models.ActionOpen).Inc()
	slog.Info("voting opened", "meeting_id", m.ID, "cleared_votes", cleared, "by", p.ID)
	return nil
}

// Close ends voting. Closing a meeting that never opened is a no-op.
func (s *Service) Close(ctx context.Context, meetingID int64, p *auth.Principal) error {
	m, err := s.unlockedMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}

	var existed bool
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.GetSession(ctx, m.ID, true); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		var err error
		existed, err = q.CloseSession(ctx, m.ID, clock.Stamp(s.clock))
		return err
	})
	if err != nil {
		return asInternal(err, "Failed to close voting")
	}

	metrics.VotingTransitionsTotal.WithLabelValues(models.ActionClose).Inc()
	slog.Info("voting closed", "meeting_id", m.ID, "had_session", existed, "by", p.ID)
	return nil
}

// SubmitBallot records one ballot. All rows go in together or not at all.
func (s *Service) SubmitBallot(ctx context.Context, meetingID int64, voterToken string, rankings []models.Ranking) error {
	m, err := s.unlockedMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	voterToken = strings.TrimSpace(voterToken)
	if voterToken == "" {
		return apperr.BadRequest("voter_token is required")
	}
	ballot, err := parseBallot(rankings)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(q *store.Queries) error {
		session, err := q.GetSession(ctx, m.ID, true)
		if errors.Is(err, store.ErrNotFound) || (err == nil && session.Status != models.StatusOpen) {
			return apperr.BadRequest("Voting is not open")
		}
		if err != nil {
			return err
		}

		nominees, err := nomineeSet(ctx, q, m.ID)
		if err != nil {
			return err
		}
		for _, v := range ballot {
			if !contains(nominees[v.Category], v.Nominee) {
				return apperr.BadRequest(fmt.Sprintf("Nominee is not eligible for %s", v.Category))
			}
		}

		voted, err := q.HasBallot(ctx, m.ID, voterToken)
		if err != nil {
			return err
		}
		if voted {
			return apperr.Conflict("You have already voted")
		}

		createdAt := clock.Stamp(s.clock)
		for _, v := range ballot {
			if err := q.InsertVote(ctx, m.ID, v, voterToken, createdAt); err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
	case apperr.KindOf(err) != apperr.KindInternal:
		return err
	case db.IsUniqueViolation(err):
		return apperr.Conflict("You have already voted")
	case db.IsForeignKeyViolation(err):
		return apperr.NotFound("Meeting or nominee no longer exists")
	default:
		return apperr.Internal("Failed to submit vote", err)
	}

	metrics.BallotsTotal.Inc()
	slog.Info("ballot submitted", "meeting_id", m.ID, "rows", len(ballot))
	return nil
}

// parseBallot validates the shape of a ballot without touching the store.
func parseBallot(rankings []models.Ranking) ([]models.Vote, error) {
	if len(rankings) == 0 {
		return nil, apperr.BadRequest("rankings are required")
	}

	type slot struct {
		category models.Category
		rank     int
	}
	type pick struct {
		category models.Category
		nominee  models.Participant
	}
	ranks := make(map[slot]bool)
	picks := make(map[pick]bool)

	ballot := make([]models.Vote, 0, len(rankings))
	for _, r := range rankings {
		if !r.Category.Valid() {
			return nil, apperr.BadRequest(fmt.Sprintf("Invalid category %q", r.Category))
		}
		if r.Rank < 1 {
			return nil, apperr.BadRequest("rank must be a positive integer")
		}
		nominee, ok := models.ParticipantFrom(r.NomineeMemberID, r.NomineeGuestID)
		if !ok {
			return nil, apperr.BadRequest("Each ranking needs exactly one of nominee_member_id or nominee_guest_id")
		}

		if ranks[slot{r.Category, r.Rank}] {
			return nil, apperr.BadRequest(fmt.Sprintf("Rank %d is used twice in %s", r.Rank, r.Category))
		}
		if picks[pick{r.Category, nominee}] {
			return nil, apperr.BadRequest(fmt.Sprintf("Nominee is ranked twice in %s", r.Category))
		}
		ranks[slot{r.Category, r.Rank}] = true
		picks[pick{r.Category, nominee}] = true

		ballot = append(ballot, models.Vote{Category: r.Category, Nominee: nominee, Rank: r.Rank})
	}
	return ballot, nil
}

func nomineeSet(ctx context.Context, q *store.Queries, meetingID int64) (map[models.Category][]models.Nominee, error) {
	set := make(map[models.Category][]models.Nominee, len(models.Categories))
	for _, c := range models.Categories {
		nominees, err := q.Nominees(ctx, meetingID, c)
		if err != nil {
			return nil, err
		}
		set[c] = nominees
	}
	return set, nil
}

func contains(nominees []models.Nominee, p models.Participant) bool {
	for _, n := range nominees {
		switch {
		case p.Kind == models.KindMember && n.MemberID != nil && *n.MemberID == p.ID:
			return true
		case p.Kind == models.KindGuest && n.GuestID != nil && *n.GuestID == p.ID:
			return true
		}
	}
	return false
}

func (s *Service) meeting(ctx context.Context, id int64) (*models.Meeting, error) {
	m, err := s.store.GetMeeting(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Meeting not found")
	}
	if err != nil {
		return nil, apperr.Internal("Database error", err)
	}
	return m, nil
}

// asInternal passes taxonomy errors through and wraps everything else.
func asInternal(err error, msg string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Internal(msg, err)
}
