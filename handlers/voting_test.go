// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/testutil"
)

func newVotingHandler(t *testing.T, conn *sql.DB, c clock.Clock) *VotingHandler {
	t.Helper()
	return NewVotingHandler(testutil.NewStore(conn), testutil.Resolver(), c)
}

func votingAction(t *testing.T, h *VotingHandler, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.Action(w, testutil.MakeRequest("POST", "/api/voting", body, headers))
	return w
}

func votingStatus(t *testing.T, h *VotingHandler, meetingID int64) models.VotingStatus {
	t.Helper()
	w := httptest.NewRecorder()
	h.Status(w, testutil.MakeRequest("GET", "/api/voting?meeting_id="+strconv.FormatInt(meetingID, 10), nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var status models.VotingStatus
	testutil.AssertJSON(t, w, &status)
	return status
}

// votingFixture is a meeting with two speakers, two evaluators and a guest
// table-topics speaker.
type votingFixture struct {
	meetingID  int64
	admin      map[string]string
	member     map[string]string
	speakerA   int64
	speakerB   int64
	evaluatorA int64
	evaluatorB int64
	guest      int64
}

func setupVoting(t *testing.T, conn *sql.DB) votingFixture {
	t.Helper()

	f := votingFixture{meetingID: testutil.CreateTestMeeting(t, conn, meetingDay)}
	adminID := testutil.CreateTestMember(t, conn, "Ada Admin", "ada@example.com", models.RoleAdmin)
	f.admin = testutil.AuthHeader(t, adminID, models.RoleAdmin)

	f.speakerA = testutil.CreateTestMember(t, conn, "Alice Speaker", "alice@example.com", models.RoleMember)
	f.speakerB = testutil.CreateTestMember(t, conn, "Bob Speaker", "bob@example.com", models.RoleMember)
	f.evaluatorA = testutil.CreateTestMember(t, conn, "Cara Eval", "cara@example.com", models.RoleMember)
	f.evaluatorB = testutil.CreateTestMember(t, conn, "Dan Eval", "dan@example.com", models.RoleMember)
	f.member = testutil.AuthHeader(t, f.speakerA, models.RoleMember)
	f.guest = testutil.CreateTestGuest(t, conn, "Gina Guest", "gina@example.com")

	testutil.AddTestSpeech(t, conn, f.meetingID, f.speakerA)
	testutil.AddTestSpeech(t, conn, f.meetingID, f.speakerB)
	testutil.AddTestEvaluator(t, conn, f.meetingID, 1, f.evaluatorA)
	testutil.AddTestEvaluator(t, conn, f.meetingID, 2, f.evaluatorB)
	testutil.CheckInTest(t, conn, f.meetingID, models.Guest(f.guest))
	testutil.MarkTestTableTopics(t, conn, f.meetingID, models.Guest(f.guest))

	return f
}

func TestVotingScenario(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))
	f := setupVoting(t, conn)

	status := votingStatus(t, handler, f.meetingID)
	if status.Status != models.StatusClosed || status.Results != nil {
		t.Fatalf("Expected closed with no results before first open, got %+v", status)
	}
	if len(status.Nominees.Speaker) != 2 || len(status.Nominees.Evaluator) != 2 || len(status.Nominees.TableTopics) != 1 {
		t.Fatalf("Unexpected nominee counts: %+v", status.Nominees)
	}

	w := votingAction(t, handler, map[string]any{"action": "open", "meeting_id": f.meetingID}, f.admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var opened models.VotingActionResponse
	testutil.AssertJSON(t, w, &opened)
	if opened.Status != models.StatusOpen {
		t.Fatalf("Expected status open, got %q", opened.Status)
	}

	w = votingAction(t, handler, map[string]any{
		"action":      "vote",
		"meeting_id":  f.meetingID,
		"voter_token": "voter-1",
		"rankings": []map[string]any{
			{"category": "speaker", "nominee_member_id": f.speakerA, "rank": 1},
			{"category": "speaker", "nominee_member_id": f.speakerB, "rank": 2},
			{"category": "table_topics", "nominee_guest_id": f.guest, "rank": 1},
		},
	}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	status = votingStatus(t, handler, f.meetingID)
	if status.Status != models.StatusOpen || status.VoteCount != 1 || status.Results != nil {
		t.Fatalf("Expected open with one voter and sealed results, got %+v", status)
	}

	w = votingAction(t, handler, map[string]any{"action": "close", "meeting_id": f.meetingID}, f.admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	status = votingStatus(t, handler, f.meetingID)
	if status.Status != models.StatusClosed {
		t.Fatalf("Expected closed, got %q", status.Status)
	}
	if status.AttendanceCount != 1 {
		t.Errorf("Expected attendanceCount 1, got %d", status.AttendanceCount)
	}

	speaker := status.Results[models.CategorySpeaker]
	if len(speaker) != 2 {
		t.Fatalf("Expected 2 speaker results, got %d", len(speaker))
	}
	if *speaker[0].NomineeMemberID != f.speakerA || speaker[0].TotalPoints != 3 || speaker[0].Medal != "gold" {
		t.Errorf("Unexpected winner: %+v", speaker[0])
	}
	if speaker[0].Name != "Alice Speaker" {
		t.Errorf("Expected winner name, got %q", speaker[0].Name)
	}
	if speaker[1].TotalPoints != 2 || speaker[1].Medal != "silver" {
		t.Errorf("Unexpected runner-up: %+v", speaker[1])
	}

	tt := status.Results[models.CategoryTableTopics]
	if len(tt) != 1 || tt[0].NomineeGuestID == nil || *tt[0].NomineeGuestID != f.guest {
		t.Errorf("Unexpected table topics results: %+v", tt)
	}
	if len(status.Results[models.CategoryEvaluator]) != 0 {
		t.Errorf("Expected no evaluator results")
	}
}

func TestVotingOpen(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	f := setupVoting(t, conn)
	open := map[string]any{"action": "open", "meeting_id": f.meetingID}

	t.Run("requires admin", func(t *testing.T) {
		handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))
		testutil.AssertStatus(t, votingAction(t, handler, open, nil), http.StatusForbidden)
		testutil.AssertStatus(t, votingAction(t, handler, open, f.member), http.StatusForbidden)
	})

	t.Run("first open only on meeting day", func(t *testing.T) {
		handler := newVotingHandler(t, conn, testutil.ClockAt(t, "2025-03-03 19:00:00"))
		testutil.AssertStatus(t, votingAction(t, handler, open, f.admin), http.StatusForbidden)
	})

	t.Run("locked after meeting day", func(t *testing.T) {
		handler := newVotingHandler(t, conn, testutil.ClockAt(t, nextDay))
		testutil.AssertStatus(t, votingAction(t, handler, open, f.admin), http.StatusForbidden)
	})

	t.Run("reopen clears votes", func(t *testing.T) {
		testutil.SetTestSession(t, conn, f.meetingID, models.StatusClosed)
		testutil.AddTestVote(t, conn, f.meetingID, "old-voter", models.CategorySpeaker, models.Member(f.speakerA), 1)

		// A session row exists, so an earlier day is allowed as long as the meeting is not locked
		handler := newVotingHandler(t, conn, testutil.ClockAt(t, "2025-03-03 19:00:00"))
		testutil.AssertStatus(t, votingAction(t, handler, open, f.admin), http.StatusOK)

		if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE meeting_id = $1`, f.meetingID); n != 0 {
			t.Errorf("Expected votes to be cleared, got %d", n)
		}

		var closedAt sql.NullString
		if err := conn.QueryRow(`SELECT closed_at FROM voting_sessions WHERE meeting_id = $1`, f.meetingID).Scan(&closedAt); err != nil {
			t.Fatalf("Failed to read session: %v", err)
		}
		if closedAt.Valid {
			t.Error("Expected closed_at to be cleared on open")
		}
	})
}

func TestVotingClose(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	f := setupVoting(t, conn)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))
	closeReq := map[string]any{"action": "close", "meeting_id": f.meetingID}

	testutil.AssertStatus(t, votingAction(t, handler, closeReq, f.member), http.StatusForbidden)

	// No session yet: closing is a no-op
	testutil.AssertStatus(t, votingAction(t, handler, closeReq, f.admin), http.StatusOK)
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM voting_sessions`); n != 0 {
		t.Errorf("Expected no session row, got %d", n)
	}

	testutil.SetTestSession(t, conn, f.meetingID, models.StatusOpen)
	testutil.AssertStatus(t, votingAction(t, handler, closeReq, f.admin), http.StatusOK)
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM voting_sessions WHERE status = 'closed' AND closed_at IS NOT NULL`); n != 1 {
		t.Error("Expected session to be closed with closed_at set")
	}
}

func TestVotingBallot(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	f := setupVoting(t, conn)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))
	testutil.SetTestSession(t, conn, f.meetingID, models.StatusOpen)

	ballot := func(token string, rankings ...map[string]any) map[string]any {
		return map[string]any{"action": "vote", "meeting_id": f.meetingID, "voter_token": token, "rankings": rankings}
	}
	speaker := func(id int64, rank int) map[string]any {
		return map[string]any{"category": "speaker", "nominee_member_id": id, "rank": rank}
	}

	tests := []struct {
		name           string
		requestBody    map[string]any
		expectedStatus int
	}{
		{"valid ballot", ballot("t1", speaker(f.speakerA, 1), speaker(f.speakerB, 2)), http.StatusOK},
		{"same token again", ballot("t1", speaker(f.speakerB, 1)), http.StatusConflict},
		{"missing token", ballot("", speaker(f.speakerA, 1)), http.StatusBadRequest},
		{"no rankings", ballot("t2"), http.StatusBadRequest},
		{"unknown category", ballot("t3", map[string]any{"category": "grammarian", "nominee_member_id": f.speakerA, "rank": 1}), http.StatusBadRequest},
		{"rank zero", ballot("t4", speaker(f.speakerA, 0)), http.StatusBadRequest},
		{"no nominee", ballot("t5", map[string]any{"category": "speaker", "rank": 1}), http.StatusBadRequest},
		{"evaluator as speaker", ballot("t6", speaker(f.evaluatorA, 1)), http.StatusBadRequest},
		{"rank used twice", ballot("t7", speaker(f.speakerA, 1), speaker(f.speakerB, 1)), http.StatusBadRequest},
		{"nominee ranked twice", ballot("t8", speaker(f.speakerA, 1), speaker(f.speakerA, 2)), http.StatusBadRequest},
		{"string ids", ballot("t9", map[string]any{"category": "evaluator", "nominee_member_id": strconv.FormatInt(f.evaluatorB, 10), "rank": 1}), http.StatusOK},
		{"invalid action", map[string]any{"action": "tally", "meeting_id": f.meetingID}, http.StatusBadRequest},
		{"missing meeting_id", map[string]any{"action": "vote", "voter_token": "t10"}, http.StatusBadRequest},
		{"unknown meeting", map[string]any{"action": "vote", "meeting_id": 999, "voter_token": "t10"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertStatus(t, votingAction(t, handler, tt.requestBody, nil), tt.expectedStatus)
		})
	}

	// Only the two accepted ballots are stored, and the rejected t1 retry left t1's first ballot intact
	if n := testutil.CountRows(t, conn, `SELECT COUNT(DISTINCT voter_token) FROM votes WHERE meeting_id = $1`, f.meetingID); n != 2 {
		t.Errorf("Expected 2 voters, got %d", n)
	}
	if n := testutil.CountRows(t, conn, `SELECT COUNT(*) FROM votes WHERE voter_token = 't1'`); n != 2 {
		t.Errorf("Expected first ballot's 2 rows for t1, got %d", n)
	}
}

func TestVotingBallot_NotOpen(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	f := setupVoting(t, conn)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))

	body := map[string]any{
		"action": "vote", "meeting_id": f.meetingID, "voter_token": "t1",
		"rankings": []map[string]any{{"category": "speaker", "nominee_member_id": f.speakerA, "rank": 1}},
	}

	// No session
	testutil.AssertStatus(t, votingAction(t, handler, body, nil), http.StatusBadRequest)

	testutil.SetTestSession(t, conn, f.meetingID, models.StatusClosed)
	testutil.AssertStatus(t, votingAction(t, handler, body, nil), http.StatusBadRequest)

	// Open but locked
	testutil.SetTestSession(t, conn, f.meetingID, models.StatusOpen)
	locked := newVotingHandler(t, conn, testutil.ClockAt(t, nextDay))
	testutil.AssertStatus(t, votingAction(t, locked, body, nil), http.StatusForbidden)
	testutil.AssertStatus(t, votingAction(t, locked, body, f.admin), http.StatusForbidden)
}

func TestVotingStatus_Validation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/api/voting", http.StatusBadRequest},
		{"/api/voting?meeting_id=x", http.StatusBadRequest},
		{"/api/voting?meeting_id=41", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Status(w, testutil.MakeRequest("GET", tt.path, nil, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestVotingStatus_Locked(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	f := setupVoting(t, conn)

	if votingStatus(t, newVotingHandler(t, conn, testutil.ClockAt(t, duringDay)), f.meetingID).IsLocked {
		t.Error("Expected unlocked during the meeting day")
	}
	if !votingStatus(t, newVotingHandler(t, conn, testutil.ClockAt(t, nextDay)), f.meetingID).IsLocked {
		t.Error("Expected locked after the meeting day")
	}
}

func TestVoterToken(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := newVotingHandler(t, conn, testutil.ClockAt(t, duringDay))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.Token(w, testutil.MakeRequest("POST", "/api/voting/token", nil, nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VoterTokenResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.VoterToken == "" || seen[resp.VoterToken] {
			t.Fatalf("Expected a fresh token, got %q", resp.VoterToken)
		}
		seen[resp.VoterToken] = true
	}
}
