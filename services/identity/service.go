package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Service verifies the opaque session tokens minted at session start. The
// engine only ever asks one question of it: which owner does this session
// belong to. No session means no core operation runs.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
}

func (s *Service) IssueToken(ownerID string, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		OwnerID: ownerID,
	})

	return token.SignedString(s.secret)
}

func (s *Service) OwnerIDFromToken(tokenString string) (string, error) {
	parsed := &claims{}

	token, err := jwt.ParseWithClaims(tokenString, parsed, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	if !token.Valid || parsed.OwnerID == "" {
		return "", ErrInvalidToken
	}

	return parsed.OwnerID, nil
}
