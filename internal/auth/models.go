package auth

import (
	"time"

	"engracedsmile/internal/users"

	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "engracedsmile"
)

// JWTClaims is the payload of both token kinds; Type tells them apart so a
// refresh token is never accepted as an access token
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

func newClaims(user *users.User, tokenType string, issued time.Time, ttl time.Duration) JWTClaims {
	id := user.ID.String()
	return JWTClaims{
		UserID: id,
		Email:  user.Email,
		Role:   string(user.Role),
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			Issuer:    tokenIssuer,
			Subject:   id,
		},
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
