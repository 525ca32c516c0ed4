// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/middleware"
	"github.com/danielhkuo/club-checkin/models"
	"github.com/danielhkuo/club-checkin/store"
	"github.com/danielhkuo/club-checkin/voting"
)

type VotingHandler struct {
	svc      *voting.Service
	resolver auth.Resolver
}

func NewVotingHandler(st *store.Store, resolver auth.Resolver, c clock.Clock) *VotingHandler {
	return &VotingHandler{svc: voting.NewService(st, c), resolver: resolver}
}

// Status handles GET /api/voting?meeting_id=
func (h *VotingHandler) Status(w http.ResponseWriter, r *http.Request) {
	meetingID, err := models.ParseFlexID(r.URL.Query().Get("meeting_id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "meeting_id must be a number")
		return
	}

	status, err := h.svc.Status(r.Context(), int64(meetingID))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// Action handles POST /api/voting with action open, close or vote
func (h *VotingHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req models.VotingActionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	principal := h.resolver.Authenticate(auth.BearerToken(r))
	resp, err := h.svc.Act(r.Context(), req, principal)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Token handles POST /api/voting/token
func (h *VotingHandler) Token(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.VoterTokenResponse{VoterToken: h.svc.IssueVoterToken()})
}
