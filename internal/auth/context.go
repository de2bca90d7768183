package auth

import "context"

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireAdmin fails unless the caller in ctx holds the admin flag.
func RequireAdmin(ctx context.Context) error {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return ErrMissingToken
	}
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}
