package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/callpilot/internal/domain"
)

// MaxPrioritizedLeads caps the quick follow-up list.
const MaxPrioritizedLeads = 5

var (
	// ErrMalformed means the text was not JSON at all.
	ErrMalformed = errors.New("malformed AI response")
	// ErrNotArray means valid JSON of the wrong shape where a list was expected.
	ErrNotArray = errors.New("AI response is not a JSON array")
	// ErrNotObject means valid JSON of the wrong shape where an object was expected.
	ErrNotObject = errors.New("AI response is not a JSON object")
	// ErrEmptyDraft means the extracted contact had no usable field.
	ErrEmptyDraft = errors.New("AI response contains no contact details")
)

// stripFences removes a surrounding ``` or ```json fence some models add.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// scalar renders a JSON scalar as a string; anything else becomes "".
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ParsePrioritizedLeads validates a quick follow-up answer. Entries without
// an id, name or reason are dropped and at most MaxPrioritizedLeads are kept.
func ParsePrioritizedLeads(text string) ([]domain.PrioritizedLead, error) {
	raw := []byte(stripFences(text))

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	leads := make([]domain.PrioritizedLead, 0, min(len(items), MaxPrioritizedLeads))
	for _, item := range items {
		if len(leads) == MaxPrioritizedLeads {
			break
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		lead := domain.PrioritizedLead{
			ID:                   scalar(obj["id"]),
			Name:                 scalar(obj["name"]),
			Phone:                scalar(obj["phone"]),
			Status:               scalar(obj["status"]),
			PrioritizationReason: scalar(obj["prioritizationReason"]),
		}
		if lead.ID == "" || lead.Name == "" || lead.PrioritizationReason == "" {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// ParseContactDraft validates a contact extraction answer. Missing fields
// become empty strings; a draft with no field at all is rejected.
func ParseContactDraft(text string) (domain.ContactDraft, error) {
	raw := []byte(stripFences(text))

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.ContactDraft{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return domain.ContactDraft{}, ErrNotObject
	}

	draft := domain.ContactDraft{
		Name:    scalar(obj["name"]),
		Phone:   scalar(obj["phone"]),
		Email:   scalar(obj["email"]),
		Company: scalar(obj["company"]),
		Notes:   scalar(obj["notes"]),
	}
	if draft == (domain.ContactDraft{}) {
		return domain.ContactDraft{}, ErrEmptyDraft
	}
	return draft, nil
}
