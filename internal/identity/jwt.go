// Package identity answers "who is the current user, if anyone". Auth
// flows themselves live elsewhere; this only verifies bearer tokens.
package identity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/threadview-dev/threadview/internal/domain"
)

type Service struct {
	key []byte
}

func New(key string) *Service {
	return &Service{key: []byte(key)}
}

// UserFromToken verifies the token signature and returns the user id
// carried in the subject claim.
func (s *Service) UserFromToken(token string) (domain.UserId, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("token has no subject: %w", err)
	}
	userId, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return userId, nil
}

// TokenFor mints a token. Used by tests and the dev wiring.
func (s *Service) TokenFor(userId domain.UserId, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userId, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}
