package adminapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity of a caller authenticated against the
// admin surface. Every bearer of a valid token is treated as an admin:
// this surface has no non-admin role, unlike the teacher's client-facing
// API.
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// JWTAuth issues and validates admin bearer tokens.
type JWTAuth struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWTAuth creates a JWTAuth signing and verifying with secretKey.
func NewJWTAuth(secretKey string) *JWTAuth {
	return &JWTAuth{
		secretKey: []byte(secretKey),
		ttl:       24 * time.Hour,
	}
}

// GenerateToken creates a new signed token for clientID.
func (j *JWTAuth) GenerateToken(clientID string) (string, time.Time, error) {
	if clientID == "" {
		return "", time.Time{}, errors.New("adminapi: clientID cannot be empty")
	}

	now := time.Now()
	expiresAt := now.Add(j.ttl)

	claims := Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("adminapi: signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken parses and validates tokenString, returning its claims.
func (j *JWTAuth) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("adminapi: token cannot be empty")
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("adminapi: unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("adminapi: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("adminapi: token is not valid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("adminapi: invalid claims type")
	}
	return claims, nil
}
