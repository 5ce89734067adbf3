package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/pkg/log"
)

type accessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// issueAccessToken выпускает access-токен с identity-клеймами пользователя.
// Срок действия — AccessTokenTTL от now; отзыва токенов нет, истечение —
// единственный механизм инвалидации.
func (s *Service) issueAccessToken(ctx context.Context, user *models.User, now time.Time) (string, error) {
	const op = "service.token.issueAccessToken"

	lg := log.From(ctx)

	claims := accessClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		lg.Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// verifyAccessToken проверяет подпись и срок действия access-токена.
// Любой отказ (битая структура, неверная подпись, чужой алгоритм,
// истёкший срок) схлопывается в ErrInvalidToken — единый ответ без
// различения причины.
func (s *Service) verifyAccessToken(tokenStr string) (*models.Identity, error) {
	const op = "service.token.verifyAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Identity{
		UserID: uid,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
	}, nil
}

// VerifyToken проверяет access-токен и возвращает identity субъекта.
func (s *Service) VerifyToken(ctx context.Context, accessToken string) (*models.Identity, error) {
	const op = "service.token.VerifyToken"

	identity, err := s.verifyAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return identity, nil
}
