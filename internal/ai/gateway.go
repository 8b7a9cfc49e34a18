// Package ai wraps the external generative model behind a gateway that
// always answers with text, plus typed parsers for the JSON it is asked for.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Fallback answers returned when the model cannot be reached.
const (
	FallbackJSON         = "{}"
	MessageNotConfigured = "API Key for Gemini is not configured."
	messageUnexpected    = "Sorry, I couldn't process that request. The response from the AI was not as expected."
	messageErrorFormat   = "Sorry, an error occurred: %s. Please try again."
)

// ErrEmptyResponse is returned by a Model when no candidate text came back.
var ErrEmptyResponse = errors.New("model returned no text")

// Image is an inline image attached to a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseImage accepts a data URL ("data:image/jpeg;base64,...") or bare
// base64, which is assumed to be PNG. Empty input yields nil.
func ParseImage(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	mime := "image/png"
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok {
			return nil, errors.New("image data URL has no payload")
		}
		meta := strings.TrimPrefix(header, "data:")
		mediaType, enc, _ := strings.Cut(meta, ";")
		if enc != "base64" {
			return nil, fmt.Errorf("image data URL must be base64 encoded, got %q", enc)
		}
		if mediaType != "" {
			mime = mediaType
		}
		payload = data
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unsupported attachment type %q", mime)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Image{MIMEType: mime, Data: raw}, nil
}

// Request is one completion call.
type Request struct {
	Prompt string
	Image  *Image
	// JSON asks the model for JSON output. The answer is not validated here.
	JSON bool

	// Logging only.
	UserID    string
	SessionID string
	Channel   string
}

// Model performs the actual generation call.
type Model interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
}

// Config selects the model variants.
type Config struct {
	TextModel   string
	VisionModel string
}

// Gateway is the only way the workflow talks to the model.
type Gateway struct {
	model Model
	cfg   Config
	log   ConversationLogger
}

// NewGateway creates a gateway. A nil model means no credential is
// configured; every call then returns the fixed fallback text.
func NewGateway(model Model, cfg Config, conversationLog ConversationLogger) *Gateway {
	if conversationLog == nil {
		conversationLog = noopConversationLogger{}
	}
	return &Gateway{model: model, cfg: cfg, log: conversationLog}
}

// Configured reports whether a model client is available.
func (g *Gateway) Configured() bool {
	return g.model != nil
}

// modelFor picks the vision variant when an image is attached.
func (g *Gateway) modelFor(req Request) string {
	if req.Image != nil {
		return g.cfg.VisionModel
	}
	return g.cfg.TextModel
}

// Complete sends req and returns the model's text. It never fails: transport
// errors, empty answers and panics in the model client all turn into a
// fallback string ("{}" when JSON was requested, an apology otherwise).
// The call is detached from caller cancellation and runs to completion.
func (g *Gateway) Complete(ctx context.Context, req Request) string {
	text, _ := g.CompleteResult(ctx, req)
	return text
}

// CompleteResult is Complete that also reports whether text came from the
// model. ok is false whenever a fallback string was substituted.
func (g *Gateway) CompleteResult(ctx context.Context, req Request) (text string, ok bool) {
	if g.model == nil {
		slog.Error("AI request skipped, no API key configured", "channel", req.Channel)
		if req.JSON {
			return FallbackJSON, false
		}
		return MessageNotConfigured, false
	}

	model := g.modelFor(req)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("AI model panicked", "model", model, "panic", r)
			text, ok = fallback(req, fmt.Errorf("%v", r)), false
		}
		g.logResponse(req, model, text, time.Since(start))
	}()
	g.logRequest(req, model)

	out, err := g.model.Generate(context.WithoutCancel(ctx), model, req)
	if err != nil {
		slog.Error("AI request failed",
			"model", model,
			"channel", req.Channel,
			"user_id", req.UserID,
			"error", err,
		)
		return fallback(req, err), false
	}

	slog.Info("AI request completed",
		"model", model,
		"channel", req.Channel,
		"user_id", req.UserID,
		"response_length", len(out),
		"duration", time.Since(start),
	)
	return out, true
}

func fallback(req Request, err error) string {
	if req.JSON {
		return FallbackJSON
	}
	if errors.Is(err, ErrEmptyResponse) {
		return messageUnexpected
	}
	return fmt.Sprintf(messageErrorFormat, err.Error())
}

func (g *Gateway) logRequest(req Request, model string) {
	meta := map[string]any{"model": model, "json": req.JSON}
	if req.Image != nil {
		meta["image_mime"] = req.Image.MIMEType
		meta["image_bytes"] = len(req.Image.Data)
	}
	g.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		Channel:    req.Channel,
		Direction:  "outbound",
		EventType:  "ai_prompt",
		ContentRaw: req.Prompt,
		Meta:       meta,
	})
}

func (g *Gateway) logResponse(req Request, model, text string, took time.Duration) {
	g.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		Channel:    req.Channel,
		Direction:  "inbound",
		EventType:  "ai_response",
		ContentRaw: text,
		Meta: map[string]any{
			"model":       model,
			"duration_ms": took.Milliseconds(),
		},
	})
}
