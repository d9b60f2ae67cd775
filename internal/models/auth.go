package models

import "github.com/golang-jwt/jwt/v5"

// TokenRequest is the identity payload presented when requesting a token. The
// caller is authenticated upstream (federated sign-in); this service only
// signs the asserted identity.
type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// TokenClaims is the JWT payload for access tokens.
type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
