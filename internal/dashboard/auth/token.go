// Package auth issues and validates the JWT access/refresh token pair and
// provides the gin middleware that guards mutation routes.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TypeAccess marks short-lived tokens sent on every request.
	TypeAccess = "access"
	// TypeRefresh marks long-lived tokens exchanged for new access tokens.
	TypeRefresh = "refresh"

	accessTTL  = time.Hour * 24
	refreshTTL = time.Hour * 24 * 7
)

// TokenPair carries a freshly issued access/refresh pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateToken signs a token of the given type for the user.
func GenerateToken(userID, secret, tokenType string) (string, error) {
	ttl := accessTTL
	if tokenType == TypeRefresh {
		ttl = refreshTTL
	}
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": tokenType,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GeneratePair issues a matching access and refresh token for the user.
func GeneratePair(userID, secret string) (*TokenPair, error) {
	access, err := GenerateToken(userID, secret, TypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateToken(userID, secret, TypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ValidateToken checks the signature, expiry and token type, returning the
// parsed claims if valid.
func ValidateToken(tokenString, secret, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != tokenType {
		return nil, fmt.Errorf("unexpected token type %q", typ)
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func Refresh(refreshToken, secret string) (string, error) {
	claims, err := ValidateToken(refreshToken, secret, TypeRefresh)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	return GenerateToken(sub, secret, TypeAccess)
}
