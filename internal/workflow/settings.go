package workflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ashureev/callpilot/internal/domain"
	"github.com/google/uuid"
)

// Settings returns a copy of the workspace settings.
func (w *Workspace) Settings() domain.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings.Clone()
}

// UpdateSettings changes the follow-up rules and script templates.
func (w *Workspace) UpdateSettings(patch domain.SettingsPatch) domain.Settings {
	w.mu.Lock()
	patch.Apply(&w.settings)
	s := w.settings.Clone()
	w.mu.Unlock()

	w.publish(EventSettingsUpdated, s)
	return s
}

// AddQuickRemark appends a remark with a fresh id.
func (w *Workspace) AddQuickRemark(text, icon string) (domain.QuickRemark, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.QuickRemark{}, &ValidationError{Message: "Remark text is required."}
	}
	r := domain.QuickRemark{ID: "qcr_" + uuid.NewString(), Text: text, Icon: icon}

	w.mu.Lock()
	w.settings.QuickRemarks = append(w.settings.QuickRemarks, r)
	s := w.settings.Clone()
	w.mu.Unlock()

	w.publish(EventSettingsUpdated, s)
	return r, nil
}

// RemoveQuickRemark deletes a remark by id.
func (w *Workspace) RemoveQuickRemark(id string) error {
	w.mu.Lock()
	before := len(w.settings.QuickRemarks)
	w.settings.QuickRemarks = slices.DeleteFunc(w.settings.QuickRemarks, func(r domain.QuickRemark) bool {
		return r.ID == id
	})
	removed := len(w.settings.QuickRemarks) != before
	s := w.settings.Clone()
	w.mu.Unlock()

	if !removed {
		return fmt.Errorf("%w: %s", ErrUnknownRemark, id)
	}
	w.publish(EventSettingsUpdated, s)
	return nil
}
