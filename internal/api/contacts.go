package api

import (
	"net/http"

	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ListContacts returns contacts, filtered to a follow-up tab when
// ?category= is set.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		JSON(w, http.StatusOK, ws.AllContacts())
		return
	}
	JSON(w, http.StatusOK, ws.Contacts(category))
}

// AddContact creates a contact entered by hand.
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req domain.NewContact
	if !decode(w, r, &req) {
		return
	}
	c, err := ws.AddContact(req)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, c)
}

// GetContact opens a contact's detail screen.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	out := ws.OpenContact(chi.URLParam(r, "id"))
	if out.Contact == nil {
		JSON(w, http.StatusNotFound, errorWithOutcome{Error: contacts.ErrNotFound.Error(), Outcome: out})
		return
	}
	JSON(w, http.StatusOK, out)
}

// UpdateContact applies a partial update.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var patch domain.ContactPatch
	if !decode(w, r, &patch) {
		return
	}
	c, err := ws.UpdateContact(chi.URLParam(r, "id"), patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, c)
}

type remarkRequest struct {
	Notes    string `json:"notes"`
	RemarkID string `json:"remarkId"`
}

// AppendRemark appends a quick remark to draft notes and returns them.
func (h *Handler) AppendRemark(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	if _, ok := ws.Contact(chi.URLParam(r, "id")); !ok {
		Error(w, http.StatusNotFound, contacts.ErrNotFound.Error())
		return
	}
	var req remarkRequest
	if !decode(w, r, &req) {
		return
	}
	notes, err := ws.AddQuickRemarkToNotes(req.Notes, req.RemarkID)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"notes": notes})
}

// NextContact moves to the next unresolved contact.
func (h *Handler) NextContact(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	JSON(w, http.StatusOK, ws.NextContact(chi.URLParam(r, "id")))
}

// SummarizeContext stores an AI summary of the contact's notes.
func (h *Handler) SummarizeContext(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	out, err := ws.SummarizeContext(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// SuggestScript stores an AI pre-call script on the contact.
func (h *Handler) SuggestScript(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	out, err := ws.SuggestScript(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}
