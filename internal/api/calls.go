package api

import (
	"net/http"
	"time"

	"github.com/ashureev/callpilot/internal/calls"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/go-chi/chi/v5"
)

type startCallRequest struct {
	ContactID string `json:"contactId"`
}

// StartCall begins a call with the given or selected contact.
func (h *Handler) StartCall(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req startCallRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	JSON(w, http.StatusOK, ws.StartCall(req.ContactID))
}

type endCallRequest struct {
	DurationSeconds int    `json:"durationSeconds"`
	Outcome         string `json:"outcome"`
}

// EndCall finalizes the active call.
func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req endCallRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.EndCall(req.DurationSeconds, req.Outcome)
	if err != nil {
		if out.Transition != nil {
			JSON(w, statusFor(err), errorWithOutcome{Error: err.Error(), Outcome: out})
			return
		}
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

type currentCallResponse struct {
	domain.CallSession
	// Elapsed is the running call clock, only set while the call is active.
	Elapsed string `json:"elapsed,omitempty"`
}

// CurrentCall returns the active or most recent call.
func (h *Handler) CurrentCall(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	session, ok := ws.CurrentCall()
	if !ok {
		Error(w, http.StatusNotFound, "no call")
		return
	}
	resp := currentCallResponse{CallSession: session}
	if !session.Ended() {
		resp.Elapsed = calls.FormatClock(int(time.Since(session.StartedAt).Seconds()))
	}
	JSON(w, http.StatusOK, resp)
}

type postCallRequest struct {
	Notes   string `json:"notes"`
	Resolve bool   `json:"resolve"`
}

// SavePostCallNotes records the post-call notes and advances.
func (h *Handler) SavePostCallNotes(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req postCallRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.SavePostCallNotes(chi.URLParam(r, "id"), req.Notes, req.Resolve)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

type analyzeRequest struct {
	Notes string `json:"notes"`
}

// AnalyzeNotes returns AI key points for draft notes.
func (h *Handler) AnalyzeNotes(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.AnalyzeNotes(r.Context(), req.Notes)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}
