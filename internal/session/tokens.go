package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type tokenClaims struct {
	Kind OwnerKind `json:"kind"`
	jwt.RegisteredClaims
}

type tokenManager struct {
	secret []byte
	now    func() time.Time
}

func newTokenManager(secret []byte, now func() time.Time) *tokenManager {
	return &tokenManager{secret: secret, now: now}
}

func (m *tokenManager) Issue(owner Owner, ttl time.Duration) (string, error) {
	issued := m.now()
	claims := tokenClaims{
		Kind: owner.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) Validate(token string) (Owner, bool) {
	var claims tokenClaims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Owner{}, false
	}
	if claims.ExpiresAt == nil || !m.now().Before(claims.ExpiresAt.Time) {
		return Owner{}, false
	}
	if claims.Kind != OwnerGuest && claims.Kind != OwnerCustomer {
		return Owner{}, false
	}
	if claims.Subject == "" {
		return Owner{}, false
	}
	return Owner{Kind: claims.Kind, ID: claims.Subject}, true
}

var errTokenSecret = errors.New("token secret required")
