// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/danielhkuo/club-checkin/apperr"
	"github.com/danielhkuo/club-checkin/attendance"
	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/middleware"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/store"
)

type AttendanceHandler struct {
	svc      *attendance.Service
	resolver auth.Resolver
}

func NewAttendanceHandler(st *store.Store, resolver auth.Resolver, c clock.Clock) *AttendanceHandler {
	return &AttendanceHandler{svc: attendance.NewService(st, c), resolver: resolver}
}

// List handles GET /api/attendance?meeting_id=
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	meetingID, err := models.ParseFlexID(r.URL.Query().Get("meeting_id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "meeting_id must be a number")
		return
	}

	resp, err := h.svc.List(r.Context(), int64(meetingID), h.principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CheckIn handles POST /api/attendance
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.svc.CheckIn(r.Context(), attendance.CheckInInput{
		MeetingID:        int64(req.MeetingID),
		Principal:        h.principal(r),
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		GuestPhone:       req.GuestPhone,
		AdminMemberEmail: req.AdminMemberEmail,
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckInResponse{
		Success:   true,
		Type:      string(result.Type),
		Name:      result.Name,
		Returning: result.Returning,
	})
}

// Remove handles DELETE /api/attendance. Ids are read from the JSON body,
// falling back to the query string.
func (h *AttendanceHandler) Remove(w http.ResponseWriter, r *http.Request) {
	req, err := participantRequest(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	err = h.svc.Remove(r.Context(), int64(req.MeetingID), req.MemberID, req.GuestID, h.principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ToggleTableTopics handles POST /api/attendance/table-topics
func (h *AttendanceHandler) ToggleTableTopics(w http.ResponseWriter, r *http.Request) {
	req, err := participantRequest(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	action, err := h.svc.ToggleTableTopics(r.Context(), int64(req.MeetingID), req.MemberID, req.GuestID, h.principal(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ToggleResponse{Success: true, Action: action})
}

func (h *AttendanceHandler) principal(r *http.Request) *auth.Principal {
	return h.resolver.Authenticate(auth.BearerToken(r))
}

// participantRequest decodes an optional JSON body and fills any id it
// left unset from the query string.
func participantRequest(r *http.Request) (models.ParticipantRequest, error) {
	var req models.ParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, apperr.BadRequest("Invalid JSON")
	}

	q := r.URL.Query()
	fields := []struct {
		name string
		dst  *models.FlexID
	}{
		{"meeting_id", &req.MeetingID},
		{"member_id", &req.MemberID},
		{"guest_id", &req.GuestID},
	}
	for _, f := range fields {
		if *f.dst != 0 {
			continue
		}
		id, err := models.ParseFlexID(q.Get(f.name))
		if err != nil {
			return req, apperr.BadRequest(f.name + " must be a number")
		}
		*f.dst = id
	}
	return req, nil
}
