//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/domain"
	"github.com/ashureev/callpilot/internal/identity"
	"github.com/ashureev/callpilot/internal/navigation"
	"github.com/ashureev/callpilot/internal/seed"
	"github.com/ashureev/callpilot/internal/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	mu      sync.Mutex
	replies []string
}

func (s *stubCompleter) CompleteResult(_ context.Context, _ ai.Request) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return "ok", true
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, true
}

type testServer struct {
	router   http.Handler
	registry *workflow.Registry
}

func newTestServer(t *testing.T, limiter *RateLimiter, replies ...string) *testServer {
	t.Helper()
	data, err := seed.Default()
	require.NoError(t, err)

	registry := workflow.NewRegistry(&stubCompleter{replies: replies}, nil, data)
	h := NewHandler(registry, limiter)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				user := &domain.User{UserID: id, DisplayName: "Dana Scully"}
				req = req.WithContext(identity.WithUser(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(identity.RequireUser)
		h.RegisterRoutes(r)
	})
	return &testServer{router: r, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Test-User", "user_1")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// outcomeBody is workflow.Outcome without the message variants, which only
// encode one way.
type outcomeBody struct {
	Transition *navigation.Transition `json:"transition"`
	Notice     string                 `json:"notice"`
	Contact    *domain.Contact        `json:"contact"`
	Call       *domain.CallSession    `json:"call"`
	Text       string                 `json:"text"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestRoutes_Table(t *testing.T) {
	rec := httptest.NewRecorder()
	Routes(rec, httptest.NewRequest(http.MethodGet, "/api/routes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	routes := decodeBody[[]routeInfo](t, rec)
	require.NotEmpty(t, routes)
	assert.Equal(t, navigation.RouteHome, routes[0].Key)
	for _, r := range routes {
		assert.Equal(t, r.Pattern == "/login" || r.Pattern == "/signup", r.Public, r.Pattern)
	}
}

func TestRoutes_RequireUser(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)
}

func TestContacts_ListAndFilter(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]domain.Contact](t, rec)
	assert.Len(t, all, 4)

	rec = s.do(t, http.MethodGet, "/api/contacts?category=urgent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	urgent := decodeBody[[]domain.Contact](t, rec)
	require.Len(t, urgent, 1)
	assert.Equal(t, "contact_1", urgent[0].ID)

	assert.Equal(t, 1, s.registry.Len())
}

func TestContacts_AddValidatesIdentity(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/contacts", domain.NewContact{Company: "Acme"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/contacts", domain.NewContact{Name: "Fox Mulder", Urgency: "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/contacts", domain.NewContact{Name: "Fox Mulder"})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decodeBody[domain.Contact](t, rec)
	assert.Equal(t, domain.UrgencyNormal, c.Urgency)

	rec = s.do(t, http.MethodGet, "/api/contacts", nil)
	all := decodeBody[[]domain.Contact](t, rec)
	assert.Equal(t, c.ID, all[0].ID)
}

func TestContacts_UnknownIDRedirects(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/contacts/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Contact not found.", body["notice"])

	rec = s.do(t, http.MethodPatch, "/api/contacts/nope", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContacts_ReopenRejected(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPatch, "/api/contacts/contact_2", map[string]bool{"isResolved": false})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCalls_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/calls/end", map[string]any{"durationSeconds": 5})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Contains(t, body["error"], "no active call session")
	assert.NotNil(t, body["transition"])

	rec = s.do(t, http.MethodPost, "/api/calls/start", map[string]string{"contactId": "contact_3"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/calls/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "contact_3", current["contactId"])
	assert.Regexp(t, `^\d+:\d{2}$`, current["elapsed"])

	rec = s.do(t, http.MethodPost, "/api/calls/end", map[string]any{"durationSeconds": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/calls/end", map[string]any{"durationSeconds": 65, "outcome": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[outcomeBody](t, rec)
	require.NotNil(t, out.Transition)
	assert.Equal(t, "/post-call/contact_3", out.Transition.To.Path)
	require.NotNil(t, out.Contact)
	require.NotEmpty(t, out.Contact.History)
	last := out.Contact.History[len(out.Contact.History)-1]
	assert.Equal(t, domain.EventCallAttempt, last.Type)
	assert.Equal(t, "1 min 5 sec", last.Content)

	rec = s.do(t, http.MethodPost, "/api/post-call/contact_3", map[string]any{"notes": "Call back Tuesday", "resolve": true})
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeBody[outcomeBody](t, rec)
	assert.True(t, out.Contact.IsResolved)
	assert.Equal(t, "/follow-ups/contact_1", out.Transition.To.Path)
}

func TestChat_UrgentShortcutAndTranscript(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/chat/ask", map[string]string{"text": "Show me urgent calls"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/chat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var transcript struct {
		Messages []map[string]any `json:"messages"`
		Busy     bool             `json:"busy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	require.Len(t, transcript.Messages, 3)
	assert.Equal(t, "ai", transcript.Messages[0]["kind"])
	assert.Equal(t, "Hello, Dana. What can I help you with today?", transcript.Messages[0]["text"])
	assert.Equal(t, "user", transcript.Messages[1]["kind"])
	assert.Equal(t, "lead_list", transcript.Messages[2]["kind"])
	assert.False(t, transcript.Busy)

	rec = s.do(t, http.MethodPost, "/api/chat/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chat/follow-ups", map[string]string{"kind": "partners"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmContact_Flow(t *testing.T) {
	s := newTestServer(t, nil, `{"name":"Walter Skinner","phone":"555-0100"}`)

	rec := s.do(t, http.MethodGet, "/api/confirm-contact", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chat/extract-contact", map[string]string{"image": "not base64!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chat/extract-contact", map[string]string{"image": "data:image/png;base64,aGVsbG8="})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[outcomeBody](t, rec)
	require.NotNil(t, out.Transition)
	assert.Equal(t, "/confirm-contact", out.Transition.To.Path)

	rec = s.do(t, http.MethodGet, "/api/confirm-contact", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Walter Skinner")

	rec = s.do(t, http.MethodPost, "/api/confirm-contact", domain.ContactDraft{Company: "FBI"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/confirm-contact", domain.ContactDraft{Name: "Walter Skinner", Phone: "555-0100"})
	require.Equal(t, http.StatusCreated, rec.Code)
	out = decodeBody[outcomeBody](t, rec)
	assert.Equal(t, "New Lead (from image)", out.Contact.Status)
	assert.Equal(t, "/", out.Transition.To.Path)

	rec = s.do(t, http.MethodPost, "/api/confirm-contact", domain.ContactDraft{Name: "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNavigate(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/navigate", map[string]string{"path": "/follow-ups/contact_4"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/navigation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "contact_4", state["selectedContactId"])
	selected, ok := state["contact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "contact_4", selected["id"])

	rec = s.do(t, http.MethodPost, "/api/navigate", map[string]string{"path": "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings_Remarks(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/settings/remarks", map[string]string{"text": "Sent brochure", "icon": "mail"})
	require.Equal(t, http.StatusCreated, rec.Code)
	remark := decodeBody[domain.QuickRemark](t, rec)
	assert.Regexp(t, `^qcr_`, remark.ID)

	rec = s.do(t, http.MethodPost, "/api/contacts/contact_1/notes", map[string]string{"notes": "Spoke briefly", "remarkId": remark.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Spoke briefly\n- Sent brochure", decodeBody[map[string]string](t, rec)["notes"])

	rec = s.do(t, http.MethodDelete, "/api/settings/remarks/"+remark.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/settings/remarks/"+remark.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rule := "Call anyone who asked for pricing"
	rec = s.do(t, http.MethodPut, "/api/settings", domain.SettingsPatch{CustomerFollowUpRule: &rule})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rule, decodeBody[domain.Settings](t, rec).CustomerFollowUpRule)
}

func TestRateLimiter_Window(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"))
	assert.Equal(t, time.Minute, rl.RetryAfter("u1"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("u1"))

	now = now.Add(2 * time.Minute)
	rl.evict()
	rl.mu.Lock()
	assert.Empty(t, rl.requests)
	rl.mu.Unlock()
}

func TestThrottleAI(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(1, time.Hour))

	rec := s.do(t, http.MethodPost, "/api/post-call/analyze", map[string]string{"notes": "they want a demo"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/post-call/analyze", map[string]string{"notes": "again"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Non-AI routes are not throttled.
	rec = s.do(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
