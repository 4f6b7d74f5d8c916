package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/pkg/e"
)

// Claims — полезная нагрузка bearer-токена.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(cfg *cfg.AuthCfg) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

// Issue выпускает подписанный HS256 токен для пользователя.
func (m *TokenManager) Issue(userID int64, email string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse валидирует токен и возвращает claims.
func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, e.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, e.ErrInvalidToken
	}

	return &claims, nil
}
