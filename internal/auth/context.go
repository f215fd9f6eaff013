package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
)

// Principal is the authenticated caller. It is passed explicitly into every
// service operation; the request context only carries it from the
// middleware to the handler.
type Principal struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Role        domain.Role
	Permissions domain.PermissionMatrix
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal adds the principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the principal from the context
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// IsAdmin reports whether the principal bypasses the capability table
func (p *Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// CanAccess reports whether the principal may act on a resource created by ownerID
func (p *Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.ID == ownerID
}

// Authorize applies the capability table: admins are always allowed, everyone
// else needs the module/action bit set.
func Authorize(p *Principal, module domain.Module, action domain.Action) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.Permissions.Allows(module, action)
}
