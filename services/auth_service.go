package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/utils"
	"github.com/google/uuid"
)

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*models.Profile, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// ResolvePrincipal - резолвер личности: профиль по id из токена, is_admin всегда свежий.
	ResolvePrincipal(ctx context.Context, profileID string) (models.Principal, error)
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Profile   *models.Profile `json:"profile"`
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"`
}

// AdminEmailChecker решает, получает ли новый профиль флаг администратора.
type AdminEmailChecker interface {
	IsAdminEmail(email string) bool
}

type authService struct {
	profileRepo repositories.ProfileRepository
	tokens      TokenService
	admins      AdminEmailChecker
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewAuthService(profileRepo repositories.ProfileRepository, tokens TokenService, admins AdminEmailChecker, retry RetryPolicy, logger *slog.Logger) AuthService {
	return &authService{
		profileRepo: profileRepo,
		tokens:      tokens,
		admins:      admins,
		retry:       retry,
		logger:      logger,
	}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*models.Profile, error) {
	email := utils.NormalizeEmail(input.Email)

	verr := newValidationError()
	if email == "" {
		verr.Add("email", "must be provided")
	}
	if input.Password == "" {
		verr.Add("password", "must be provided")
	}
	if !verr.Empty() {
		return nil, verr
	}

	exists, err := s.profileRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile email: %w", err)
	}
	if exists {
		return nil, ErrProfileEmailConflict
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		IsAdmin:      s.admins.IsAdminEmail(email),
	}

	// Вставка профиля - единственная операция с повторами.
	err = s.retry.Do(ctx, s.logger, "create_profile",
		func(err error) bool { return !errors.Is(err, repositories.ErrProfileEmailConflict) },
		func(ctx context.Context) error { return s.profileRepo.Create(ctx, profile) },
	)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrProfileEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания профиля: %w", err)
	}

	s.logger.InfoContext(ctx, "profile created", slog.String("profile_id", profile.ID), slog.Bool("is_admin", profile.IsAdmin))
	return profile, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, profile.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}

	profile.PasswordHash = ""
	return &LoginResult{
		Profile:   profile,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, profileID string) (models.Principal, error) {
	if _, err := uuid.Parse(profileID); err != nil {
		return models.Principal{}, ErrAuthenticationFailed
	}
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return models.Principal{}, ErrAuthenticationFailed
		}
		return models.Principal{}, fmt.Errorf("failed to resolve principal: %w", err)
	}
	return profile.Principal(), nil
}
