package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/util"

	"github.com/google/uuid"
)

// AuthService - вход и регистрация сотрудников
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *util.JWTManager
	activities ActivityRecorder
}

func NewAuthService(userRepo repository.UserRepository, jwtManager *util.JWTManager, activities ActivityRecorder) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		activities: activities,
	}
}

// Login проверяет пароль и выдаёт токен.
// Неизвестный пользователь и неверный пароль неотличимы для клиента.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			util.BurnPasswordCheck(req.Password)
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials, nil)
		}
		logger.Error().Err(err).Str("username", req.Username).Msg("Failed to load user")
		return nil, newError(ErrPersistence, "Error during login", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, newError(ErrInvalidCredentials, MsgInvalidCredentials, nil)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")
	if s.activities != nil {
		s.activities.Record(WithActor(ctx, user.Username), "Logged in")
	}

	return resp, nil
}

// Register создает пользователя (роль по умолчанию staff) и выдаёт токен
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	_, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, newError(ErrUserExists, MsgUserExists, nil)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logger.Error().Err(err).Str("username", req.Username).Msg("Failed to check existing user")
		return nil, newError(ErrPersistence, "Error during registration", err)
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, newError(ErrPersistence, "Error during registration", fmt.Errorf("failed to hash password: %w", err))
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         entity.RoleStaff,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrUserExists, MsgUserExists, err)
		}
		logger.Error().Err(err).Str("username", req.Username).Msg("Failed to create user")
		return nil, fromStore(err, "during registration")
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	if s.activities != nil {
		s.activities.Record(WithActor(ctx, user.Username), "Registered user "+user.Username)
	}

	return resp, nil
}

func (s *AuthService) issue(user *entity.User) (*entity.AuthResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		return nil, newError(ErrPersistence, "Error generating token", err)
	}

	return &entity.AuthResponse{
		Token: token,
		User: entity.PublicUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}
