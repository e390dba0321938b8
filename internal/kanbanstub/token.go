package kanbanstub

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// tokenManager signs and checks the session cookie.
type tokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func newTokenManager(secretKey []byte, tokenDuration time.Duration) *tokenManager {
	return &tokenManager{secretKey: secretKey, tokenDuration: tokenDuration}
}

func (m *tokenManager) generate(username string) (string, error) {
	now := time.Now()
	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "kanbanstub",
			Subject:   username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(m.secretKey)
}

func (m *tokenManager) validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return c.Username, nil
}
