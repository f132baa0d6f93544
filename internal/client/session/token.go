package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/weathermood/weathermood/internal/common"
)

// Claims mirrors the access-token claims issued by the mirror server.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
}

// ParseClaims extracts the identity claims from an access token without
// verifying the signature. The client does not hold the server secret; the
// token is verified by the mirror on every call, the claims here only seed
// the local identity.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
