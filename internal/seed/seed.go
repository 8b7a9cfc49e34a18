// Package seed loads the contacts and settings every new workspace starts with.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ashureev/callpilot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Contact is a seeded contact. LastInteractionAgo is relative to the moment
// the workspace is created.
type Contact struct {
	domain.NewContact `yaml:",inline"`

	ID                 string        `yaml:"id"`
	Resolved           bool          `yaml:"resolved"`
	LastInteractionAgo time.Duration `yaml:"lastInteractionAgo"`
}

// Data is the full seed document.
type Data struct {
	Contacts []Contact       `yaml:"contacts"`
	Settings domain.Settings `yaml:"settings"`
}

// Default returns the embedded seed data.
func Default() (Data, error) {
	return Parse(defaultYAML)
}

// Load reads seed data from path, or the embedded default when path is empty.
func Load(path string) (Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}
	data, err := Parse(raw)
	if err != nil {
		return Data{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return data, nil
}

// Parse decodes and validates a seed document.
func Parse(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("decode seed yaml: %w", err)
	}
	if err := data.Validate(); err != nil {
		return Data{}, err
	}
	return data, nil
}

// Validate checks ids and enumerated fields.
func (d *Data) Validate() error {
	seen := make(map[string]bool, len(d.Contacts))
	for i := range d.Contacts {
		c := &d.Contacts[i]
		if c.ID == "" {
			return fmt.Errorf("contact %d: id is required", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("contact %s: duplicate id", c.ID)
		}
		seen[c.ID] = true

		u, err := domain.ParseUrgency(string(c.Urgency))
		if err != nil {
			return fmt.Errorf("contact %s: %w", c.ID, err)
		}
		c.Urgency = u
		if c.LastInteractionAgo < 0 {
			return fmt.Errorf("contact %s: lastInteractionAgo must not be negative", c.ID)
		}
	}

	remarks := make(map[string]bool, len(d.Settings.QuickRemarks))
	for _, r := range d.Settings.QuickRemarks {
		if r.ID == "" || r.Text == "" {
			return errors.New("quick remark needs both id and text")
		}
		if remarks[r.ID] {
			return fmt.Errorf("quick remark %s: duplicate id", r.ID)
		}
		remarks[r.ID] = true
	}
	return nil
}

// Materialize turns a seeded contact into a stored contact as of now.
func (c Contact) Materialize(now time.Time) domain.Contact {
	callBefore := c.CallBefore
	if callBefore == "" {
		callBefore = domain.CallBeforeNone
	}
	return domain.Contact{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Email:           c.Email,
		Company:         c.Company,
		Status:          c.Status,
		Urgency:         c.Urgency,
		CallBefore:      callBefore,
		Notes:           c.Notes,
		PreCallScript:   c.PreCallScript,
		History:         []domain.HistoryEvent{},
		IsResolved:      c.Resolved,
		LastInteraction: now.Add(-c.LastInteractionAgo),
	}
}
