// Package auth implements credential and token primitives for the server:
// session JWTs, bcrypt password hashing, and the purpose-tagged signed
// tokens used in email-verification and password-reset links.
package auth

import (
	"errors"
	"time"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the authenticated
// user's id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken mints an HS256 session token for userID.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates a session token and returns the embedded
// user id. Expired tokens yield common.ErrTokenExpired; any other failure
// yields common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
