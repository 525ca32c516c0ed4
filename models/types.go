package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Member roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Voting session status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Voting actions
const (
	ActionOpen  = "open"
	ActionClose = "close"
	ActionVote  = "vote"
)

// Table-topics toggle outcomes
const (
	ToggleAdded   = "added"
	ToggleRemoved = "removed"
)

type Category string

const (
	CategorySpeaker     Category = "speaker"
	CategoryEvaluator   Category = "evaluator"
	CategoryTableTopics Category = "table_topics"
)

// Categories lists every award category in display order.
var Categories = []Category{CategorySpeaker, CategoryEvaluator, CategoryTableTopics}

func (c Category) Valid() bool {
	switch c {
	case CategorySpeaker, CategoryEvaluator, CategoryTableTopics:
		return true
	}
	return false
}

// Medals by result position
var Medals = []string{"gold", "silver", "bronze"}

// FlexID is a numeric identifier that accepts either a JSON number or a
// numeric string. Zero means absent.
type FlexID int64

func (id *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*id = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", string(b))
	}
	*id = FlexID(n)
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(id))
}

// ParseFlexID parses a query-string id. An empty string is absent.
func ParseFlexID(s string) (FlexID, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return FlexID(n), nil
}

// Participants

type ParticipantKind string

const (
	KindMember ParticipantKind = "member"
	KindGuest  ParticipantKind = "guest"
)

// Participant is exactly one of a member or a guest.
type Participant struct {
	Kind ParticipantKind
	ID   int64
}

func Member(id int64) Participant { return Participant{Kind: KindMember, ID: id} }
func Guest(id int64) Participant  { return Participant{Kind: KindGuest, ID: id} }

// ParticipantFrom builds a participant from an API member_id/guest_id pair.
// It reports false unless exactly one of them is set.
func ParticipantFrom(memberID, guestID FlexID) (Participant, bool) {
	switch {
	case memberID > 0 && guestID == 0:
		return Member(int64(memberID)), true
	case guestID > 0 && memberID == 0:
		return Guest(int64(guestID)), true
	}
	return Participant{}, false
}

// Key is a stable sort key, ordered by kind and then by id.
func (p Participant) Key() string {
	return fmt.Sprintf("%s:%020d", p.Kind, p.ID)
}

// MemberID returns the member id, or nil for a guest.
func (p Participant) MemberID() *int64 {
	if p.Kind != KindMember {
		return nil
	}
	id := p.ID
	return &id
}

// GuestID returns the guest id, or nil for a member.
func (p Participant) GuestID() *int64 {
	if p.Kind != KindGuest {
		return nil
	}
	id := p.ID
	return &id
}

// Request types

type CheckInRequest struct {
	MeetingID        FlexID `json:"meeting_id"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email"`
	GuestPhone       string `json:"guest_phone"`
	AdminMemberEmail string `json:"admin_member_email"`
}

// ParticipantRequest identifies one attendee of a meeting.
type ParticipantRequest struct {
	MeetingID FlexID `json:"meeting_id"`
	MemberID  FlexID `json:"member_id"`
	GuestID   FlexID `json:"guest_id"`
}

type Ranking struct {
	Category        Category `json:"category"`
	NomineeMemberID FlexID   `json:"nominee_member_id"`
	NomineeGuestID  FlexID   `json:"nominee_guest_id"`
	Rank            int      `json:"rank"`
}

type VotingActionRequest struct {
	Action     string    `json:"action"`
	MeetingID  FlexID    `json:"meeting_id"`
	VoterToken string    `json:"voter_token"`
	Rankings   []Ranking `json:"rankings"`
}

// Response types

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CheckInResponse struct {
	Success   bool   `json:"success"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Returning *bool  `json:"returning,omitempty"`
}

type ToggleResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

type VotingActionResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
}

type VoterTokenResponse struct {
	VoterToken string `json:"voter_token"`
}

type AttendanceEntry struct {
	ID                   int64   `json:"id"`
	MeetingID            int64   `json:"meeting_id"`
	MemberID             *int64  `json:"member_id"`
	GuestID              *int64  `json:"guest_id"`
	CheckedInAt          string  `json:"checked_in_at"`
	Name                 string  `json:"name"`
	Type                 string  `json:"type"`
	IsTableTopicsSpeaker bool    `json:"is_table_topics_speaker"`
	Email                *string `json:"email,omitempty"` // admins only
	Phone                *string `json:"phone,omitempty"` // admins only
}

type AttendanceListResponse struct {
	Attendance []AttendanceEntry `json:"attendance"`
	IsLocked   bool              `json:"isLocked"`
}

type Nominee struct {
	MemberID *int64 `json:"member_id"`
	GuestID  *int64 `json:"guest_id"`
	Name     string `json:"name"`
}

type NomineeSet struct {
	Speaker     []Nominee `json:"speaker"`
	Evaluator   []Nominee `json:"evaluator"`
	TableTopics []Nominee `json:"table_topics"`
}

type NomineeResult struct {
	NomineeMemberID  *int64 `json:"nominee_member_id"`
	NomineeGuestID   *int64 `json:"nominee_guest_id"`
	Name             string `json:"name"`
	TotalPoints      int    `json:"total_points"`
	FirstPlaceVotes  int    `json:"first_place_votes"`
	SecondPlaceVotes int    `json:"second_place_votes"`
	Medal            string `json:"medal"`
}

type VotingStatus struct {
	Status          string                       `json:"status"`
	IsLocked        bool                         `json:"isLocked"`
	AttendanceCount int                          `json:"attendanceCount"`
	VoteCount       int                          `json:"voteCount"`
	Nominees        NomineeSet                   `json:"nominees"`
	Results         map[Category][]NomineeResult `json:"results"` // nil until closed
}

// Domain types

type Meeting struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Theme  string `json:"theme"`
	Status string `json:"status"`
}

type MemberRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type GuestRecord struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type VotingSession struct {
	MeetingID int64
	Status    string
	OpenedAt  *string
	ClosedAt  *string
}

// Vote is one ranked row of a ballot.
type Vote struct {
	Category Category
	Nominee  Participant
	Name     string
	Rank     int
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
