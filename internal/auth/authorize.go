package auth

import (
	"slices"

	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
)

type Decision int

const (
	Allow Decision = iota
	// DenyAnonymous sends the visitor to the login screen.
	DenyAnonymous
	// DenyRole sends an authenticated user without the role home.
	DenyRole
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyAnonymous:
		return "deny_anonymous"
	case DenyRole:
		return "deny_role"
	}
	return "unknown"
}

// Redirect is the screen a denied visitor is sent to, or "" when allowed.
func (d Decision) Redirect() string {
	switch d {
	case DenyAnonymous:
		return "/login"
	case DenyRole:
		return "/"
	}
	return ""
}

// Authorize gates a screen on identity. No roles means any signed-in user.
func Authorize(claims *token.Claims, roles ...person.Role) Decision {
	if claims == nil {
		return DenyAnonymous
	}
	if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
		return DenyRole
	}
	return Allow
}

func IsActiveOwner(claims *token.Claims) bool {
	return claims.IsOwner() && claims.AccountStatus == person.AccountActive
}

// CanAddResidence reports whether an owner with current listings is still
// under the residences_to_publish entitlement.
func CanAddResidence(claims *token.Claims, current int) bool {
	if !claims.IsOwner() {
		return false
	}
	return current < claims.ResidencesToPublish
}
