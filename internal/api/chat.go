package api

import (
	"net/http"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/navigation"
	"github.com/ashureev/callpilot/internal/workflow"
)

// Navigate moves to a path.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.Navigate(req.Path)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

type routeInfo struct {
	Key     navigation.RouteKey `json:"key"`
	Pattern string              `json:"pattern"`
	Public  bool                `json:"public"`
}

// Routes lists the screens clients can navigate to. It needs no sign-in.
func Routes(w http.ResponseWriter, _ *http.Request) {
	table := navigation.Routes()
	out := make([]routeInfo, 0, len(table))
	for _, r := range table {
		out = append(out, routeInfo{Key: r.Key, Pattern: r.Pattern, Public: r.Public})
	}
	JSON(w, http.StatusOK, out)
}

// NavigationState reports the current screen and selection.
func (h *Handler) NavigationState(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	resp := navigationResponse{State: ws.NavigationState()}
	if c, ok := ws.SelectedContact(); ok {
		resp.Contact = &c
	}
	JSON(w, http.StatusOK, resp)
}

type navigationResponse struct {
	navigation.State
	Contact *domain.Contact `json:"contact,omitempty"`
}

type transcriptResponse struct {
	Messages []domain.Message `json:"messages"`
	Busy     bool             `json:"busy"`
}

// Transcript returns the chat history.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	JSON(w, http.StatusOK, transcriptResponse{Messages: ws.Transcript(), Busy: ws.Busy()})
}

type imageRequest struct {
	Image string `json:"image"`
}

// AttachImage holds an image for the next question.
func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.AttachImage(req.Image)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

type askRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Ask sends a chat message to the assistant.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.Ask(r.Context(), req.Text, req.Image)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// QuickFollowUps asks for a prioritized customer or prospect list.
func (h *Handler) QuickFollowUps(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req struct {
		Kind workflow.FollowUpKind `json:"kind"`
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.QuickFollowUps(r.Context(), req.Kind)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// ExtractContact reads a business card or screenshot into a draft contact.
func (h *Handler) ExtractContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := ws.ExtractContact(r.Context(), req.Image)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// GetConfirmation returns the staged extraction.
func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	c, ok := ws.Confirmation()
	if !ok {
		fail(w, r, workflow.ErrNothingToConfirm)
		return
	}
	JSON(w, http.StatusOK, c)
}

// ConfirmContact saves the staged extraction as edited by the user.
func (h *Handler) ConfirmContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var form domain.ContactDraft
	if !decode(w, r, &form) {
		return
	}
	out, err := ws.ConfirmContact(form)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, out)
}

// CancelConfirmation discards the staged extraction.
func (h *Handler) CancelConfirmation(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	JSON(w, http.StatusOK, ws.CancelConfirmation())
}
