// Package services содержит логику бизнес-уровня для регистрации и аутентификации пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/lib/jwt"
	"github.com/magabrotheeeer/taskshare/internal/lib/password"
	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию и выпуск JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя на тарифе FREE с хэшированным паролем.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", apperr.Wrap(apperr.KindBadRequest, "", err, "invalid password")
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		PasswordHash: hashed,
		Plan:         models.PlanFree,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", apperr.New(apperr.KindConflict, apperr.ReasonAlreadyExists, "user with this email or username already exists")
		}
		return "", apperr.Internal(err, "failed to register user")
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выпускает токен доступа.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.New(apperr.KindUnauthorized, apperr.ReasonInvalidCredentials, "invalid credentials")
		}
		return "", apperr.Internal(err, "failed to load user")
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", apperr.New(apperr.KindUnauthorized, apperr.ReasonInvalidCredentials, "invalid credentials")
	}
	token, err := s.jwtMaker.GenerateToken(user.UUID, user.Username)
	if err != nil {
		return "", fmt.Errorf("auth.Login: %w", err)
	}
	return token, nil
}

// ValidateToken проверяет JWT и возвращает пользователя, которому он выпущен.
// Возвращённый пользователь содержит только UUID и Username.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "", err, "invalid or expired token")
	}
	return &models.User{
		UUID:     claims.UserUID,
		Username: claims.Username,
	}, nil
}
