package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medidesk/medidesk/internal/platform/apperr"
)

// TokenTTL is the fixed lifetime of a session token. There is no server-side
// session store and no revocation; logout is client-side token discard.
const TokenTTL = 24 * time.Hour

// Claims is the identity a session token carries.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// NewIssuerWithClock is used by tests that need to control token expiry.
func NewIssuerWithClock(secret string, now func() time.Time) *Issuer {
	return &Issuer{secret: []byte(secret), now: now}
}

// Issue returns a signed token embedding the user's id, username and role.
func (i *Issuer) Issue(userID int64, username string, role Role) (string, error) {
	issued := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token. An expired token yields a distinct
// message from a token that never validated.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("session expired, log in again")
		}
		return nil, apperr.Unauthenticated("invalid session token")
	}
	if !token.Valid {
		return nil, apperr.Unauthenticated("invalid session token")
	}
	return claims, nil
}
