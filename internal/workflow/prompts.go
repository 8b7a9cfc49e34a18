package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashureev/callpilot/internal/domain"
)

const (
	extractContactPrompt = "Analyze the attached image. It might contain handwritten or printed contact information. " +
		"Extract the Name, Phone Number, Email Address, Company Name, and any other relevant notes. " +
		"If a field is not found, return an empty string for it. " +
		"Ensure the response is a valid JSON object matching the provided schema structure."

	leadListImagePrompt = "This image contains a list of leads. Please extract the information and tell me " +
		"you've uploaded it to the CRM. If you can extract names, phone numbers, or emails, mention that. " +
		"The user said: \"%s\""

	imageQuestionPrompt = "The user uploaded an image and said: \"%s\". " +
		"Describe the image or answer the question based on the image."

	followUpPrompt = `You are an AI assistant for a CRM. Your task is to help an agent prioritize follow-ups.
Rule: "%s"
Contacts: %s
Return a JSON array of up to 5 prioritized contacts with fields: "id", "name", "phone", "status", "prioritizationReason".
prioritizationReason should be a brief explanation based on the rule and contact data.
If no contacts meet criteria, return an empty JSON array [].`

	summarizePrompt = "Summarize the following customer context in one or two short sentences for a sales agent: \"%s\""

	scriptPrompt = "Based on the following customer context: \"%s\" and their status: \"%s\", " +
		"suggest a brief and polite pre-call script for a sales agent."

	scriptTemplatesSuffix = "\n\nPlease also consider these general script templates and guidelines " +
		"when crafting the script: \"%s\""

	analyzeNotesPrompt = "Analyze the following post-call notes and provide a brief summary of key points " +
		"or suggest next actions for a sales agent: \"%s\""
)

// contactDigest is the redacted view of a contact sent to the model.
type contactDigest struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Company    string         `json:"company"`
	Status     string         `json:"status"`
	Notes      string         `json:"notes"`
	Urgency    domain.Urgency `json:"urgency"`
	IsResolved bool           `json:"isResolved"`
	History    int            `json:"history"`
}

func digest(list []domain.Contact) (string, error) {
	out := make([]contactDigest, 0, len(list))
	for _, c := range list {
		out = append(out, contactDigest{
			ID:         c.ID,
			Name:       c.Name,
			Phone:      c.Phone,
			Email:      c.Email,
			Company:    c.Company,
			Status:     c.Status,
			Notes:      c.Notes,
			Urgency:    c.Urgency,
			IsResolved: c.IsResolved,
			History:    len(c.History),
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode contact digest: %w", err)
	}
	return string(data), nil
}

func buildFollowUpPrompt(rule string, list []domain.Contact) (string, error) {
	d, err := digest(list)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(followUpPrompt, rule, d), nil
}

func buildScriptPrompt(c domain.Contact, templates string) string {
	prompt := fmt.Sprintf(scriptPrompt, c.Notes, c.Status)
	if strings.TrimSpace(templates) != "" {
		prompt += fmt.Sprintf(scriptTemplatesSuffix, templates)
	}
	return prompt
}

// AppendRemark adds a quick remark as a bullet on its own line.
func AppendRemark(notes, remark string) string {
	if notes == "" {
		return "- " + remark
	}
	return notes + "\n- " + remark
}
