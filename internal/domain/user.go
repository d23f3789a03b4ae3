package domain

import "context"

type userKey struct{}

// Guest is the user name assumed when a request carries no identity.
const Guest = "guest"

// ContextWithUser returns a context carrying the authenticated user name.
func ContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user name, or Guest if unset.
func UserFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(userKey{}).(string); ok && u != "" {
		return u
	}
	return Guest
}
