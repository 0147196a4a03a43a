package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
)

// ErrMissingRole возвращается для токена без роли приложения.
var ErrMissingRole = errors.New("token: в токене нет роли")

// TokenManager проверяет access токены провайдера идентификации (HS256, общий секрет).
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
}

func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL}
}

// Issue выпускает access токен. Нужен только для локальной разработки и тестов.
func (m *TokenManager) Issue(userID uuid.UUID, role valueobject.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"app_role": string(role),
		"iat":      now.Unix(),
		"exp":      now.Add(m.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccess извлекает userID и роль. Роль берётся из app_role, затем из role.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, valueobject.Role, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("token: некорректный sub: %w", err)
	}

	raw, _ := claims["app_role"].(string)
	if raw == "" {
		raw, _ = claims["role"].(string)
	}
	if raw == "" {
		return uuid.Nil, "", ErrMissingRole
	}
	role, err := valueobject.NewRole(raw)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, role, nil
}
