package middleware

import (
	"net/url"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/session"
)

const (
	DefaultSignInPath   = "/login"
	DefaultFallbackPath = "/"
)

// AccessConfig is the guard contract for one protected view.
type AccessConfig struct {
	// RequiredPermission, when non-empty, must be held by the profile.
	RequiredPermission authz.Permission
	// AllowedRoles bypass permission and province checks entirely. The
	// allow-list is a superset escape hatch: administrators must not be
	// blocked by a missing granular permission flag.
	AllowedRoles []authz.Role
	// ProvinceCheck, when set, must evaluate true for the profile.
	ProvinceCheck func(p *model.UserProfile) bool
	// ProvinceParam names a route parameter holding a province id; when set,
	// the middleware checks HasProvinceAccess against it.
	ProvinceParam string
	// FallbackPath receives permission/province denials. Defaults to the
	// landing route.
	FallbackPath string
	// SignInPath receives unauthenticated requests, with the original
	// location preserved for post-login return.
	SignInPath string
}

type DecisionKind int

const (
	// DecisionLoading suspends the navigation decision while the session is
	// still authenticating.
	DecisionLoading DecisionKind = iota
	DecisionAllow
	DecisionRedirect
)

// Decision is the guard verdict for one request.
type Decision struct {
	Kind     DecisionKind
	Location string // redirect target when Kind is DecisionRedirect
}

// Decide is the pure guard: session state and profile in, verdict out.
// Check order is fixed: loading, authentication, role allow-list bypass,
// required permission, province predicate.
func Decide(state session.State, profile *model.UserProfile, requested string, cfg AccessConfig) Decision {
	signIn := cfg.SignInPath
	if signIn == "" {
		signIn = DefaultSignInPath
	}
	fallback := cfg.FallbackPath
	if fallback == "" {
		fallback = DefaultFallbackPath
	}

	if state == session.StateAuthenticating {
		return Decision{Kind: DecisionLoading}
	}

	if state == session.StateUnauthenticated || state == session.StateFailed {
		loc := signIn
		if requested != "" {
			loc += "?redirect=" + url.QueryEscape(requested)
		}
		return Decision{Kind: DecisionRedirect, Location: loc}
	}

	if len(cfg.AllowedRoles) > 0 && authz.HasAnyRole(profile, cfg.AllowedRoles...) {
		return Decision{Kind: DecisionAllow}
	}

	if cfg.RequiredPermission != "" && !authz.HasPermission(profile, cfg.RequiredPermission) {
		return Decision{Kind: DecisionRedirect, Location: fallback}
	}

	if cfg.ProvinceCheck != nil && !cfg.ProvinceCheck(profile) {
		return Decision{Kind: DecisionRedirect, Location: fallback}
	}

	return Decision{Kind: DecisionAllow}
}
