// Package navigation maps logical screens to paths and tracks which contact
// and which pending contact confirmation are in focus.
package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RouteKey names a screen.
type RouteKey string

const (
	RouteHome           RouteKey = "home"
	RouteFollowUps      RouteKey = "follow_ups"
	RouteFollowUpDetail RouteKey = "follow_up_detail"
	RouteCall           RouteKey = "call"
	RoutePostCall       RouteKey = "post_call"
	RouteConfirmContact RouteKey = "confirm_contact"
	RouteSettings       RouteKey = "settings"
	RouteLogin          RouteKey = "login"
	RouteSignup         RouteKey = "signup"
)

// ParamContactID is the only path parameter any screen takes.
const ParamContactID = "contactId"

var (
	// ErrUnknownRoute is returned for route keys outside the table.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrUnknownPath is returned when a path matches no screen.
	ErrUnknownPath = errors.New("unknown path")
	// ErrRouteParams is returned when params do not match the route's list.
	ErrRouteParams = errors.New("route parameters mismatch")
)

// Route describes one screen.
type Route struct {
	Key     RouteKey
	Pattern string
	Params  []string
	// ContactScoped screens keep the selected contact when navigated to
	// without an explicit contact id.
	ContactScoped bool
	// Public screens are reachable without a signed-in user.
	Public bool
}

var table = []Route{
	{Key: RouteHome, Pattern: "/"},
	{Key: RouteFollowUps, Pattern: "/follow-ups"},
	{Key: RouteFollowUpDetail, Pattern: "/follow-ups/{contactId}", Params: []string{ParamContactID}, ContactScoped: true},
	{Key: RouteCall, Pattern: "/call/{contactId}", Params: []string{ParamContactID}, ContactScoped: true},
	{Key: RoutePostCall, Pattern: "/post-call/{contactId}", Params: []string{ParamContactID}, ContactScoped: true},
	{Key: RouteConfirmContact, Pattern: "/confirm-contact"},
	{Key: RouteSettings, Pattern: "/settings"},
	{Key: RouteLogin, Pattern: "/login", Public: true},
	{Key: RouteSignup, Pattern: "/signup", Public: true},
}

var (
	byKey     = make(map[RouteKey]Route, len(table))
	byPattern = make(map[string]Route, len(table))
	matcher   = chi.NewRouter()
)

func init() {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range table {
		byKey[r.Key] = r
		byPattern[r.Pattern] = r
		matcher.Get(r.Pattern, noop)
	}
}

// Routes returns the route table in declaration order.
func Routes() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// Target is a concrete destination: a route plus its parameter values.
type Target struct {
	Route  RouteKey          `json:"route"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// ContactID returns the contactId parameter, if any.
func (t Target) ContactID() string {
	return t.Params[ParamContactID]
}

// Home is the chat screen.
func Home() Target { return mustBuild(RouteHome, nil) }

// FollowUps is the follow-up list.
func FollowUps() Target { return mustBuild(RouteFollowUps, nil) }

// FollowUpDetail is the detail screen for one contact.
func FollowUpDetail(contactID string) Target {
	return mustBuild(RouteFollowUpDetail, map[string]string{ParamContactID: contactID})
}

// Call is the active call screen.
func Call(contactID string) Target {
	return mustBuild(RouteCall, map[string]string{ParamContactID: contactID})
}

// PostCall is the wrap-up screen.
func PostCall(contactID string) Target {
	return mustBuild(RoutePostCall, map[string]string{ParamContactID: contactID})
}

// ConfirmContact is the screen reviewing an extracted contact.
func ConfirmContact() Target { return mustBuild(RouteConfirmContact, nil) }

// Settings is the settings screen.
func Settings() Target { return mustBuild(RouteSettings, nil) }

// Login is the sign-in screen.
func Login() Target { return mustBuild(RouteLogin, nil) }

// Signup is the registration screen.
func Signup() Target { return mustBuild(RouteSignup, nil) }

func mustBuild(key RouteKey, params map[string]string) Target {
	t, err := Build(key, params)
	if err != nil {
		// Only reachable through the typed builders with an empty id; keep the
		// route but leave the placeholder unresolved.
		r := byKey[key]
		return Target{Route: key, Path: r.Pattern, Params: params}
	}
	return t
}

// Build fills the route's placeholders. Every declared parameter must be
// present and non-empty, and no undeclared parameter may be given.
func Build(key RouteKey, params map[string]string) (Target, error) {
	r, ok := byKey[key]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownRoute, key)
	}
	if len(params) != len(r.Params) {
		return Target{}, fmt.Errorf("%w: %s wants %v, got %d", ErrRouteParams, key, r.Params, len(params))
	}

	path := r.Pattern
	var bound map[string]string
	for _, name := range r.Params {
		v, ok := params[name]
		if !ok || v == "" {
			return Target{}, fmt.Errorf("%w: %s missing %q", ErrRouteParams, key, name)
		}
		path = strings.Replace(path, "{"+name+"}", url.PathEscape(v), 1)
		if bound == nil {
			bound = make(map[string]string, len(r.Params))
		}
		bound[name] = v
	}
	return Target{Route: key, Path: path, Params: bound}, nil
}

// Resolve parses a concrete path (query string and trailing slash ignored)
// back into a Target.
func Resolve(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrUnknownPath, err)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	rctx := chi.NewRouteContext()
	if !matcher.Match(rctx, http.MethodGet, path) {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownPath, raw)
	}
	r, ok := byPattern[rctx.RoutePattern()]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownPath, raw)
	}

	params := make(map[string]string, len(r.Params))
	for _, name := range r.Params {
		v, err := url.PathUnescape(rctx.URLParam(name))
		if err != nil {
			return Target{}, fmt.Errorf("%w: %s", ErrUnknownPath, raw)
		}
		params[name] = v
	}
	return Build(r.Key, params)
}

// IsPublicPath reports whether path leads to a screen that needs no sign-in.
func IsPublicPath(path string) bool {
	t, err := Resolve(path)
	if err != nil {
		return false
	}
	return byKey[t.Route].Public
}
