package services

import (
	"fmt"
	"time"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims - содержимое access-токена.
type TokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(profile *models.Profile) (string, time.Time, error)
	Verify(token string) (*TokenClaims, error)
}

type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &jwtTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *jwtTokenService) Issue(profile *models.Profile) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := TokenClaims{
		Email:   profile.Email,
		IsAdmin: profile.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *jwtTokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrAuthenticationFailed
	}
	return claims, nil
}
