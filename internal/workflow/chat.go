package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/contacts"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/navigation"
)

// FollowUpKind is the audience of a quick follow-up request.
type FollowUpKind string

const (
	FollowUpCustomers FollowUpKind = "customers"
	FollowUpProspects FollowUpKind = "prospects"
)

const (
	urgentLeadLimit = 2

	msgUrgentLeads      = "Here are some urgent leads from your CRM:"
	msgNoUrgentLeads    = "No urgent leads found in your CRM at the moment."
	msgImageAttached    = "Image attached. Type your message and send."
	msgExtracting       = "Extracting contact from image..."
	msgExtractFailed    = "Sorry, I couldn't extract contact details clearly from that image. Please try again or enter manually."
	msgFollowUpParse    = "There was an issue processing the AI's response. Please try again."
	msgFollowUpFormat   = "The AI returned an unexpected format. Please try again."
	msgFollowUpProgress = "Generating prioritized list for %q based on your rules..."
)

func parseImage(dataURL string) (*ai.Image, error) {
	img, err := ai.ParseImage(dataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// AttachImage holds an image for the next Ask.
func (w *Workspace) AttachImage(dataURL string) (Outcome, error) {
	img, err := parseImage(dataURL)
	if err != nil {
		return Outcome{}, err
	}
	if img == nil {
		return Outcome{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	w.mu.Lock()
	w.attachment = dataURL
	w.mu.Unlock()

	msg := domain.SystemMessage{MessageMeta: w.meta(), Text: msgImageAttached}
	w.appendMessages(msg)
	return Outcome{Messages: []domain.Message{msg}}, nil
}

func (w *Workspace) takeAttachment() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	a := w.attachment
	w.attachment = ""
	return a
}

// Ask handles a free-form chat message, optionally with an image. Asking for
// "numbers to dial" or "urgent calls" answers from the store directly.
func (w *Workspace) Ask(ctx context.Context, text, imageDataURL string) (Outcome, error) {
	release, err := w.beginAI()
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	if imageDataURL == "" {
		imageDataURL = w.takeAttachment()
	}
	if strings.TrimSpace(text) == "" && imageDataURL == "" {
		return Outcome{}, ErrEmptyPrompt
	}
	img, err := parseImage(imageDataURL)
	if err != nil {
		return Outcome{}, err
	}

	userMsg := domain.UserMessage{MessageMeta: w.meta(), Text: text, Image: imageDataURL}
	w.appendMessages(userMsg)

	lower := strings.ToLower(text)
	prompt := text
	switch {
	case img != nil && strings.Contains(lower, "lead list"):
		prompt = fmt.Sprintf(leadListImagePrompt, text)
	case strings.Contains(lower, "numbers to dial") || strings.Contains(lower, "urgent calls"):
		reply := w.urgentLeads()
		w.appendMessages(reply)
		return Outcome{Messages: []domain.Message{userMsg, reply}}, nil
	case img != nil:
		prompt = fmt.Sprintf(imageQuestionPrompt, text)
	}

	answer := w.withLoader(func() string {
		return w.complete(ctx, "ask", ai.Request{Prompt: prompt, Image: img})
	})

	reply := domain.AIMessage{MessageMeta: w.meta(), Text: answer}
	w.appendMessages(reply)
	return Outcome{Messages: []domain.Message{userMsg, reply}}, nil
}

// urgentLeads lists up to two urgent unresolved contacts in store order.
func (w *Workspace) urgentLeads() domain.Message {
	var cards []domain.LeadCard
	for _, c := range w.contacts.List() {
		if len(cards) == urgentLeadLimit {
			break
		}
		if contacts.CategoryUrgent.Matches(c) {
			cards = append(cards, domain.CardFor(c))
		}
	}
	if len(cards) == 0 {
		return domain.AIMessage{MessageMeta: w.meta(), Text: msgNoUrgentLeads}
	}
	return domain.LeadListMessage{MessageMeta: w.meta(), Text: msgUrgentLeads, Leads: cards}
}

// QuickFollowUps asks the model to rank contacts against the customer or
// prospect follow-up rule.
func (w *Workspace) QuickFollowUps(ctx context.Context, kind FollowUpKind) (Outcome, error) {
	var rule string
	settings := w.Settings()
	switch kind {
	case FollowUpCustomers:
		rule = settings.CustomerFollowUpRule
	case FollowUpProspects:
		rule = settings.ProspectFollowUpRule
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownFollowUpKind, kind)
	}
	prompt, err := buildFollowUpPrompt(rule, w.contacts.List())
	if err != nil {
		return Outcome{}, fmt.Errorf("build follow-up prompt: %w", err)
	}

	release, err := w.beginAI()
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	action := "Follow up with " + string(kind)
	userMsg := domain.UserMessage{MessageMeta: w.meta(), Text: action}
	progress := domain.AIMessage{MessageMeta: w.meta(), Text: fmt.Sprintf(msgFollowUpProgress, action)}
	w.appendMessages(userMsg, progress)

	answer := w.withLoader(func() string {
		return w.complete(ctx, "quick_follow_ups", ai.Request{
			Prompt: prompt,
			JSON:   true,
		})
	})

	out := Outcome{}
	leads, err := ai.ParsePrioritizedLeads(answer)
	var reply domain.Message
	switch {
	case errors.Is(err, ai.ErrNotArray):
		w.logger().Warn("Follow-up answer was not a list", "kind", kind)
		out.Notice = msgFollowUpFormat
		reply = domain.AIMessage{MessageMeta: w.meta(), Text: msgFollowUpFormat}
	case err != nil:
		w.logger().Warn("Follow-up answer could not be parsed", "kind", kind, "error", err)
		out.Notice = msgFollowUpParse
		reply = domain.AIMessage{MessageMeta: w.meta(), Text: msgFollowUpParse}
	case len(leads) == 0:
		reply = domain.AIMessage{
			MessageMeta: w.meta(),
			Text:        fmt.Sprintf("No %s found matching the criteria based on your rules.", kind),
		}
	default:
		out.Leads = leads
		reply = domain.FollowUpListMessage{
			MessageMeta: w.meta(),
			Text:        fmt.Sprintf("Here are the prioritized %s based on your rules:", kind),
			Leads:       leads,
		}
	}

	w.appendMessages(reply)
	out.Messages = []domain.Message{userMsg, progress, reply}
	return out, nil
}

// ExtractContact reads contact details off an image and stages them for
// confirmation. Nothing is written to the store here.
func (w *Workspace) ExtractContact(ctx context.Context, imageDataURL string) (Outcome, error) {
	img, err := parseImage(imageDataURL)
	if err != nil {
		return Outcome{}, err
	}
	if img == nil {
		return Outcome{}, fmt.Errorf("%w: an image is required", ErrInvalidImage)
	}

	release, err := w.beginAI()
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	userMsg := domain.UserMessage{MessageMeta: w.meta(), Text: msgExtracting, Image: imageDataURL}
	w.appendMessages(userMsg)

	answer := w.withLoader(func() string {
		return w.complete(ctx, "extract_contact", ai.Request{
			Prompt: extractContactPrompt,
			Image:  img,
			JSON:   true,
		})
	})

	draft, err := ai.ParseContactDraft(answer)
	if err != nil {
		w.logger().Warn("Contact extraction failed", "error", err)
		reply := domain.AIMessage{MessageMeta: w.meta(), Text: msgExtractFailed}
		w.appendMessages(reply)
		return Outcome{Notice: msgExtractFailed, Messages: []domain.Message{userMsg, reply}}, nil
	}

	w.nav.Stage(navigation.ContactConfirmation{Image: imageDataURL, Extracted: draft})
	return Outcome{
		Transition: w.navigate(navigation.ConfirmContact()),
		Messages:   []domain.Message{userMsg},
	}, nil
}
