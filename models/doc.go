// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Participants

A Participant is exactly one of a member or a guest:

	p := models.Member(12)
	p := models.Guest(7)

Requests carry the pair member_id/guest_id; ParticipantFrom turns it into a
Participant and rejects "both" and "neither". Only the store spreads a
Participant back into nullable columns.

# Identifiers

FlexID accepts 12 or "12" in JSON, since clients send both. Zero is absent.

# Request Types

  - CheckInRequest: meeting_id, guest_name, guest_email, guest_phone, admin_member_email
  - ParticipantRequest: meeting_id, member_id, guest_id
  - VotingActionRequest: action, meeting_id, voter_token, rankings

# Response Types

  - CheckInResponse: success, type, name, returning
  - ToggleResponse: success, action
  - AttendanceListResponse: attendance, isLocked
  - VotingStatus: status, isLocked, attendanceCount, voteCount, nominees, results
  - VotingActionResponse: success, status
  - ErrorResponse: error, message

# Constants

Session status values:

	StatusOpen   = "open"
	StatusClosed = "closed"

Award categories:

	CategorySpeaker     = "speaker"
	CategoryEvaluator   = "evaluator"
	CategoryTableTopics = "table_topics"
*/
package models
