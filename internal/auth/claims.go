// Package auth verifies the identity tokens issued by the upstream identity
// provider and carries the resulting owner key through the request context.
package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. The owner key is the email claim, falling
// back to the subject.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// OwnerKey returns the identity that scopes every bookmark operation.
func (c *Claims) OwnerKey() string {
	if email := strings.TrimSpace(c.Email); email != "" {
		return strings.ToLower(email)
	}
	return strings.TrimSpace(c.Subject)
}

type ownerKey struct{}

// WithOwner stores the verified owner key in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner key stored by WithOwner.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}
