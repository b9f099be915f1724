// Package principal carries the already-authenticated identity consumed by
// the engine. Credentials are issued and verified by an external
// collaborator; this package only transports the result and gates access by
// role.
package principal

import (
	"context"

	"github.com/fedecoop/padron/pkg/domain"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Key is the context key for the request Principal.
const Key ContextKey = "principal"

// Role is the coarse access level attached to a principal.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleReader   Role = "reader"
)

// rank orders roles for RequireRole: a higher role satisfies a lower
// requirement.
var rank = map[Role]int{
	RoleReader:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// Principal is the authenticated identity for a request, combined with the
// request-specific context the audit trail records.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role

	// Request context
	RemoteIP  string
	UserAgent string
	SessionID string
}

// HasRole reports whether the principal's role satisfies the required role.
func (p *Principal) HasRole(required Role) bool {
	if p == nil {
		return false
	}
	have, ok := rank[p.Role]
	if !ok {
		return false
	}
	want, ok := rank[required]
	if !ok {
		return false
	}
	return have >= want
}

// RequireRole returns nil when the principal satisfies the required role
// and an AccessDeniedError otherwise. Anonymous requests (nil principal)
// never satisfy a role.
func (p *Principal) RequireRole(required Role) error {
	if p.HasRole(required) {
		return nil
	}
	return domain.ErrAccessDenied("operation requires role %q", required)
}

// WithContext attaches the principal to the context.
func WithContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, Key, p)
}

// FromContext extracts the principal from the context. The second return is
// false for anonymous requests.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(Key).(*Principal)
	return p, ok && p != nil
}
