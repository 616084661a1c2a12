// Package auth implements token and password primitives for the server:
// HS256 JWTs carrying the account email as subject, and bcrypt password
// hashing/verification.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a signed HS256 token with the given subject (the
// account email) and expiry window.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies signature and expiry and returns the subject
// claim. Expired tokens yield common.ErrTokenExpired, everything else that is
// not verifiable yields common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
