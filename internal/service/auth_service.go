package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotelms/internal/auth"
	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// TokenPair is returned on successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	RegisterCustomer(ctx context.Context, in RegisterInput) (*model.User, error)
	RegisterAdmin(ctx context.Context, in RegisterInput, adminKey string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	userRepo       repository.UserRepository
	otpService     OTPService
	jwtService     *auth.JWTService
	tokenStore     auth.TokenStoreInterface
	adminSignupKey string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	otpService OTPService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	adminSignupKey string,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		otpService:     otpService,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		adminSignupKey: adminSignupKey,
	}
}

// RegisterCustomer creates an unverified customer and mails a verification code.
func (s *authService) RegisterCustomer(ctx context.Context, in RegisterInput) (*model.User, error) {
	user, err := s.register(ctx, in, model.RoleCustomer, false)
	if err != nil {
		return nil, err
	}

	// The customer can request a new code if this one is lost.
	if err := s.otpService.Send(ctx, user.Email, model.OTPPurposeEmailVerification); err != nil {
		logger.WithContext(ctx).Warn("send verification code", "error", err, "user_id", user.ID)
	}
	return user, nil
}

// RegisterAdmin creates a verified admin when the signup key matches.
func (s *authService) RegisterAdmin(ctx context.Context, in RegisterInput, adminKey string) (*model.User, error) {
	if s.adminSignupKey == "" {
		return nil, apperrors.ErrAdminSignupDisabled
	}
	if subtle.ConstantTimeCompare([]byte(adminKey), []byte(s.adminSignupKey)) != 1 {
		return nil, apperrors.ErrInvalidAdminKey
	}
	return s.register(ctx, in, model.RoleAdmin, true)
}

func (s *authService) register(ctx context.Context, in RegisterInput, role model.Role, verified bool) (*model.User, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:          in.Name,
		Email:         email,
		Phone:         in.Phone,
		PasswordHash:  string(hashedPassword),
		Role:          role,
		EmailVerified: verified,
		Active:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.WithContext(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, apperrors.ErrAccountInactive
	}
	if !user.EmailVerified {
		return nil, nil, apperrors.ErrEmailNotVerified
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// RefreshToken validates a stored refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidRefreshToken
	}

	// Role changes and deactivation take effect on the next refresh.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil || !user.Active {
		return "", apperrors.ErrInvalidRefreshToken
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates the refresh token and revokes the presented access token.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	if access != nil && claims.UserID != access.UserID {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if access != nil {
		if ttl := s.jwtService.RemainingTTL(access); ttl > 0 {
			if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, ttl); err != nil {
				return fmt.Errorf("blacklist access token: %w", err)
			}
		}
	}
	return nil
}

// Me returns the user behind the current token.
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ResetPassword sets a new password after verifying a password reset code.
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if err := s.otpService.Verify(ctx, email, model.OTPPurposePasswordReset, code); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOTPInvalid
		}
		return fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// Sessions opened with the old password end at their next refresh.
	if err := s.tokenStore.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	logger.WithContext(ctx).Info("password reset", "user_id", user.ID)
	return nil
}
