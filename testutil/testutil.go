// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/cliparse"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/db"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/store"
)

// TestJWTSecret signs every token issued by the helpers below
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB opens a fresh sqlite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "club.db")
	conn, err := db.Open(db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// NewStore wraps a test database
func NewStore(conn *sql.DB) *store.Store {
	return store.New(conn, db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: string(db.SQLite),
		JWTSecret:    TestJWTSecret,
		ReferenceTZ:  "America/New_York",
	}
}

// Resolver returns the identity resolver matching the tokens issued here
func Resolver() *auth.JWTResolver {
	return auth.NewJWTResolver(TestJWTSecret)
}

// ClockAt returns a clock fixed at the given reference-zone wall time
// ("YYYY-MM-DD HH:MM:SS").
func ClockAt(t *testing.T, wall string) clock.Fixed {
	t.Helper()

	ts, err := time.ParseInLocation(clock.StampLayout, wall, clock.Reference)
	if err != nil {
		t.Fatalf("Invalid clock time %q: %v", wall, err)
	}
	return clock.Fixed(ts)
}

// AuthHeader returns an Authorization header for a principal
func AuthHeader(t *testing.T, id int64, role string) map[string]string {
	t.Helper()

	token, err := Resolver().Issue(auth.Principal{ID: id, Email: "user@example.com", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// AdminPrincipal and MemberPrincipal build principals for service-level tests

func AdminPrincipal(id int64) *auth.Principal {
	return &auth.Principal{ID: id, Email: "admin@example.com", Role: models.RoleAdmin}
}

func MemberPrincipal(id int64) *auth.Principal {
	return &auth.Principal{ID: id, Email: "member@example.com", Role: models.RoleMember}
}

// CreateTestMeeting creates a meeting on date (YYYY-MM-DD) and returns its ID
func CreateTestMeeting(t *testing.T, conn *sql.DB, date string) int64 {
	t.Helper()
	return insertID(t, conn, `
		INSERT INTO meetings (date, theme, status) VALUES ($1, 'Test Meeting', 'scheduled') RETURNING id
	`, date)
}

// CreateTestMember creates a member and returns its ID
func CreateTestMember(t *testing.T, conn *sql.DB, name, email, role string) int64 {
	t.Helper()
	return insertID(t, conn, `
		INSERT INTO members (name, email, role, is_active) VALUES ($1, $2, $3, 1) RETURNING id
	`, name, email, role)
}

// CreateTestGuest creates a guest and returns its ID
func CreateTestGuest(t *testing.T, conn *sql.DB, name, email string) int64 {
	t.Helper()
	return insertID(t, conn, `
		INSERT INTO guests (name, email, created_at) VALUES ($1, $2, '2025-01-01 00:00:00') RETURNING id
	`, name, email)
}

// AddTestSpeech records a speech by a member, making them a speaker nominee
func AddTestSpeech(t *testing.T, conn *sql.DB, meetingID, memberID int64) {
	t.Helper()
	mustExec(t, conn, `
		INSERT INTO speeches (meeting_id, speaker_id, speech_title) VALUES ($1, $2, 'Icebreaker')
	`, meetingID, memberID)
}

// AddTestEvaluator assigns a member to an evaluator slot
func AddTestEvaluator(t *testing.T, conn *sql.DB, meetingID int64, slot int, memberID int64) {
	t.Helper()
	mustExec(t, conn, `
		INSERT INTO evaluators (meeting_id, slot_number, member_id) VALUES ($1, $2, $3)
	`, meetingID, slot, memberID)
}

// CheckInTest records attendance directly
func CheckInTest(t *testing.T, conn *sql.DB, meetingID int64, p models.Participant) {
	t.Helper()
	mustExec(t, conn, `
		INSERT INTO attendance (meeting_id, member_id, guest_id, checked_in_at)
		VALUES ($1, $2, $3, '2025-01-01 19:00:00')
	`, meetingID, p.MemberID(), p.GuestID())
}

// MarkTestTableTopics marks a participant as a table-topics speaker
func MarkTestTableTopics(t *testing.T, conn *sql.DB, meetingID int64, p models.Participant) {
	t.Helper()
	mustExec(t, conn, `
		INSERT INTO table_topics_speakers (meeting_id, member_id, guest_id) VALUES ($1, $2, $3)
	`, meetingID, p.MemberID(), p.GuestID())
}

// SetTestSession writes the meeting's voting session with the given status
func SetTestSession(t *testing.T, conn *sql.DB, meetingID int64, status string) {
	t.Helper()

	var closedAt *string
	if status == models.StatusClosed {
		ts := "2025-01-01 21:00:00"
		closedAt = &ts
	}
	mustExec(t, conn, `
		INSERT INTO voting_sessions (meeting_id, status, opened_at, closed_at)
		VALUES ($1, $2, '2025-01-01 20:00:00', $3)
		ON CONFLICT (meeting_id) DO UPDATE SET status = excluded.status, closed_at = excluded.closed_at
	`, meetingID, status, closedAt)
}

// AddTestVote inserts one ranked vote row
func AddTestVote(t *testing.T, conn *sql.DB, meetingID int64, token string, category models.Category, p models.Participant, rank int) {
	t.Helper()
	mustExec(t, conn, `
		INSERT INTO votes (meeting_id, category, nominee_member_id, nominee_guest_id, rank, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, '2025-01-01 20:30:00')
	`, meetingID, string(category), p.MemberID(), p.GuestID(), rank, token)
}

// CountRows runs a COUNT query and returns the result
func CountRows(t *testing.T, conn *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

func insertID(t *testing.T, conn *sql.DB, query string, args ...any) int64 {
	t.Helper()

	var id int64
	if err := conn.QueryRow(query, args...).Scan(&id); err != nil {
		t.Fatalf("Failed to insert fixture: %v", err)
	}
	return id
}

func mustExec(t *testing.T, conn *sql.DB, query string, args ...any) {
	t.Helper()

	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("Failed to insert fixture: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
