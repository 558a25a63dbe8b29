package auth

import (
	"time"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Kind tags a signed link token with its declared purpose, so a token issued
// for one flow can never be replayed in another.
type Kind string

const (
	KindVerify Kind = "verify"
	KindReset  Kind = "reset"
)

// Lifetimes for the two token purposes. Constants, not configuration.
const (
	VerifyTokenMaxAge = 24 * time.Hour
	ResetTokenMaxAge  = 1 * time.Hour
)

type linkClaims struct {
	jwt.RegisteredClaims
	Kind   string `json:"kind"`
	UserID string `json:"uid"`
}

// Issuer mints and checks purpose-tagged signed tokens. The signing key is
// process-wide secret, loaded once at startup, and shared with nothing else
// except session JWTs derived from the same configuration.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Issue produces a tamper-evident token encoding the kind, the user id, and
// the issue time. Expiry is not embedded; it is derived from the issue time
// at verification.
func (i *Issuer) Issue(kind Kind, userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(i.now()),
		},
		Kind:   string(kind),
		UserID: userID,
	})
	return token.SignedString(i.secret)
}

// Verify checks signature, age, and kind, and returns the embedded user id.
// Failures are deliberately coarse: expired tokens yield
// common.ErrTokenExpired, everything else common.ErrInvalidToken, so callers
// cannot leak which check failed.
func (i *Issuer) Verify(tokenString string, expectedKind Kind, maxAge time.Duration) (string, error) {
	claims := &linkClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.IssuedAt == nil {
		return "", common.ErrInvalidToken
	}
	if i.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", common.ErrTokenExpired
	}
	if claims.Kind != string(expectedKind) {
		return "", common.ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
