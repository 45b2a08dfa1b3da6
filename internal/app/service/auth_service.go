package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"calc_service/internal/common"
	"calc_service/internal/common/security"
	"calc_service/internal/domain/model"
	"calc_service/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// LoginThrottle limits failed login attempts per account key. A nil
// throttle disables limiting.
type LoginThrottle interface {
	TooManyAttempts(ctx context.Context, id string) (bool, error)
	RecordFailure(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
}

// PasswordPolicy is the business-rule check applied to new passwords.
type PasswordPolicy struct {
	MinLength int
}

func (p PasswordPolicy) Check(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters: %w", p.MinLength, common.ErrWeakPassword)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit: %w", common.ErrWeakPassword)
	}
	return nil
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   *security.Hasher
	tokens   *security.TokenManager
	policy   PasswordPolicy
	throttle LoginThrottle
	logger   *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher *security.Hasher,
	tokens *security.TokenManager,
	policy PasswordPolicy,
	throttle LoginThrottle,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		policy:   policy,
		throttle: throttle,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" {
		return nil, fmt.Errorf("username is required: %w", common.ErrInvalidInput)
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, common.ErrInvalidEmail
	}
	if err := s.policy.Check(req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	user.HashedPassword = "" // Never leaves the service
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	if blocked := s.throttled(ctx, req.Email); blocked {
		return nil, common.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Indistinguishable from a wrong password
			s.recordFailure(ctx, req.Email)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.HashedPassword)
	if err != nil {
		s.logger.Error("stored hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, common.ErrInvalidCredentials
	}
	if !ok {
		s.recordFailure(ctx, req.Email)
		return nil, common.ErrInvalidCredentials
	}

	if !user.IsActive {
		// Disabled accounts look like bad credentials before auth completes
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.resetFailures(ctx, req.Email)

	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Authorize turns a bearer token into the current user. The caller
// gets typed errors for expired/forged/garbled tokens, missing
// subjects, and disabled accounts.
func (s *AuthService) Authorize(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrUserDisabled
	}

	user.HashedPassword = ""
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(current, user.HashedPassword)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}

	if err := s.policy.Check(next); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}

	user.HashedPassword = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// Deactivate soft-disables the account; records are never physically deleted.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user deactivated", zap.String("user_id", userID))
	return nil
}

// Throttle failures are logged and ignored so a redis outage cannot
// block logins.
func (s *AuthService) throttled(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return false
	}
	blocked, err := s.throttle.TooManyAttempts(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
		return false
	}
	return blocked
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
	}
}
