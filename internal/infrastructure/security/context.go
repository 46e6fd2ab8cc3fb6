package security

import (
	"context"
	"strconv"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uint   `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

func (i Identity) Subject() string {
	return strconv.FormatUint(uint64(i.UserID), 10)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
