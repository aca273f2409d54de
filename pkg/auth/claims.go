package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the claim set minted by the external identity provider.
// The backend only consumes the opaque user identifier.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// AccessTokenPayload carries the values needed to mint a token. Minting lives
// here for tests and local tooling; production tokens come from the identity
// provider.
type AccessTokenPayload struct {
	UserID uuid.UUID
	JTI    string
}
