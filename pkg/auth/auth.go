package auth

import (
	"context"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Claims is the token payload issued on login and consumed by the
// authentication middleware.
type Claims struct {
	Profile struct {
		UserID   int    `json:"userId"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"profile"`
	jwt.RegisteredClaims
}

// Identity is the already-verified caller of a request. Handlers and
// services only ever see an Identity, never a raw token.
type Identity struct {
	UserID   int
	Username string
	Role     string
}

type contextKey int

const identityKey contextKey = iota + 1

func SetIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
