package contacts

import (
	"sort"

	"github.com/ashureev/callpilot/internal/domain"
)

// Category selects which contacts appear in a follow-up list.
type Category string

const (
	CategoryRecent   Category = "recent"
	CategoryUrgent   Category = "urgent"
	CategoryFollowUp Category = "follow_up"
	CategoryNoAnswer Category = "no_answer"
)

// ParseCategory maps a query value onto a category. Unknown values fall
// back to recent, which lists every unresolved contact.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryUrgent, CategoryFollowUp, CategoryNoAnswer:
		return Category(s)
	}
	return CategoryRecent
}

// Matches reports whether c belongs to the category.
func (cat Category) Matches(c domain.Contact) bool {
	if c.IsResolved {
		return false
	}
	switch cat {
	case CategoryUrgent:
		return c.Urgency == domain.UrgencyUrgent
	case CategoryNoAnswer:
		return c.HasNoAnswerAttempt()
	default:
		return true
	}
}

// FollowUps filters list by category and orders the result by most recent
// interaction first. Ties keep store order.
func FollowUps(list []domain.Contact, cat Category) []domain.Contact {
	out := make([]domain.Contact, 0, len(list))
	for _, c := range list {
		if cat.Matches(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastInteraction.After(out[j].LastInteraction)
	})
	return out
}

// NextContact picks the contact after currentID for the "next" button.
// It scans forward circularly for an unresolved contact; if the scan wraps
// without finding one it falls back to the first unresolved contact in store
// order other than the current one. ok is false when there is no such contact.
func NextContact(list []domain.Contact, currentID string) (next domain.Contact, ok bool) {
	idx := -1
	for i, c := range list {
		if c.ID == currentID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		for step := 1; step < len(list); step++ {
			c := list[(idx+step)%len(list)]
			if !c.IsResolved {
				return c, true
			}
		}
	}
	return FirstUnresolved(list, currentID)
}

// FirstUnresolved returns the first unresolved contact in store order whose
// id differs from excludeID.
func FirstUnresolved(list []domain.Contact, excludeID string) (domain.Contact, bool) {
	for _, c := range unresolved(list) {
		if c.ID != excludeID {
			return c, true
		}
	}
	return domain.Contact{}, false
}

// unresolved returns the contacts still awaiting follow-up, in store order.
func unresolved(list []domain.Contact) []domain.Contact {
	out := make([]domain.Contact, 0, len(list))
	for _, c := range list {
		if !c.IsResolved {
			out = append(out, c)
		}
	}
	return out
}
