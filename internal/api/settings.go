package api

import (
	"net/http"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GetSettings returns the workspace settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	JSON(w, http.StatusOK, ws.Settings())
}

// UpdateSettings changes follow-up rules and script templates.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var patch domain.SettingsPatch
	if !decode(w, r, &patch) {
		return
	}
	JSON(w, http.StatusOK, ws.UpdateSettings(patch))
}

// AddQuickRemark adds a quick remark.
func (h *Handler) AddQuickRemark(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	var req struct {
		Text string `json:"text"`
		Icon string `json:"icon"`
	}
	if !decode(w, r, &req) {
		return
	}
	remark, err := ws.AddQuickRemark(req.Text, req.Icon)
	if err != nil {
		fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, remark)
}

// RemoveQuickRemark deletes a quick remark.
func (h *Handler) RemoveQuickRemark(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws == nil {
		return
	}
	if err := ws.RemoveQuickRemark(chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
