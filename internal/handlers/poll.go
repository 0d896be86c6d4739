package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/polls"
)

type PollHandler struct {
	service *polls.Service
	logger  zerolog.Logger
}

type createPollRequest struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
	// RFC 3339 with an explicit offset; naive timestamps are rejected.
	ExpiresAt string `json:"expires_at"`
	// Absent means results are shown while the poll is open.
	ResultsVisibleLive *bool `json:"results_visible_live"`
}

type joinPollRequest struct {
	InviteCode string `json:"invite_code"`
}

type joinPollResponse struct {
	PollID string `json:"poll_id"`
}

type castVoteRequest struct {
	OptionID string `json:"option_id"`
}

func NewPollHandler(service *polls.Service, logger zerolog.Logger) *PollHandler {
	return &PollHandler{
		service: service,
		logger:  logger.With().Str("handler", "poll").Logger(),
	}
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createPollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ExpiresAt == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "expires_at is required")
		return
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input",
			"expires_at must be an RFC 3339 timestamp with a UTC offset, e.g. 2026-03-02T10:00:00Z")
		return
	}

	live := true
	if req.ResultsVisibleLive != nil {
		live = *req.ResultsVisibleLive
	}
	view, err := h.service.CreatePoll(r.Context(), userID, polls.CreatePollInput{
		Title:              req.Title,
		Options:            req.Options,
		ExpiresAt:          expiresAt,
		ResultsVisibleLive: live,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to create poll")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	views, err := h.service.ListJoinedPolls(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list polls")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetPoll(r.Context(), pollIDFromRequest(r), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get poll")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PollHandler) JoinPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req joinPollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pollID, err := h.service.JoinByInviteCode(r.Context(), req.InviteCode, userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to join poll")
		return
	}
	writeJSON(w, http.StatusOK, joinPollResponse{PollID: pollID})
}

func (h *PollHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req castVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vote, err := h.service.CastVote(r.Context(), pollIDFromRequest(r), userID, req.OptionID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to cast vote")
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePoll(r.Context(), pollIDFromRequest(r), userID); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to delete poll")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) LeavePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.LeavePoll(r.Context(), pollIDFromRequest(r), userID); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to leave poll")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) EndPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.EndPoll(r.Context(), pollIDFromRequest(r), userID); err != nil {
		writeServiceError(w, r, h.logger, err, "failed to end poll")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Poll ended"})
}
