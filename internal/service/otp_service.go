package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotelms/internal/cache"
	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/mailer"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

const otpDigits = 6

// OTPConfig controls code lifetime and abuse limits.
type OTPConfig struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

// OTPService issues and checks one-time email codes.
type OTPService interface {
	Send(ctx context.Context, email string, purpose model.OTPPurpose) error
	Verify(ctx context.Context, email string, purpose model.OTPPurpose, code string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type otpService struct {
	otpRepo  repository.OTPRepository
	userRepo repository.UserRepository
	cache    *cache.Client
	mailer   mailer.Mailer
	cfg      OTPConfig
	now      func() time.Time
	generate func() (string, error)
}

// NewOTPService creates a new OTP service.
func NewOTPService(
	otpRepo repository.OTPRepository,
	userRepo repository.UserRepository,
	cache *cache.Client,
	m mailer.Mailer,
	cfg OTPConfig,
) OTPService {
	return &otpService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		cache:    cache,
		mailer:   m,
		cfg:      cfg,
		now:      time.Now,
		generate: generateCode,
	}
}

func generateCode() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func cooldownKey(email string, purpose model.OTPPurpose) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, email)
}

// Send issues a fresh code and mails it. Password reset requests for unknown
// emails succeed silently.
func (s *otpService) Send(ctx context.Context, email string, purpose model.OTPPurpose) error {
	email = normalizeEmail(email)
	log := logger.WithContext(ctx)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user: %w", err)
		}
		if purpose == model.OTPPurposePasswordReset {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return apperrors.ErrUserNotFound
	}
	if purpose == model.OTPPurposeEmailVerification && user.EmailVerified {
		return apperrors.ErrAlreadyVerified
	}

	if s.cfg.ResendCooldown > 0 && !s.cache.SetNX(ctx, cooldownKey(email, purpose), []byte("1"), s.cfg.ResendCooldown) {
		return apperrors.ErrOTPCooldown
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if err := s.otpRepo.InvalidateActive(ctx, email, purpose); err != nil {
		return fmt.Errorf("invalidate codes: %w", err)
	}
	otp := &model.OTP{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.cfg.TTL),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	msg := mailer.OTPMessage(email, user.Name, code, string(purpose), s.cfg.TTL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send code: %w", err)
	}

	log.Info("otp sent", "purpose", purpose, "user_id", user.ID)
	return nil
}

// Verify checks a code and consumes it. A verified email_verification code marks
// the user verified.
func (s *otpService) Verify(ctx context.Context, email string, purpose model.OTPPurpose, code string) error {
	email = normalizeEmail(email)

	otp, err := s.otpRepo.FindLatestActive(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOTPInvalid
		}
		return fmt.Errorf("find code: %w", err)
	}

	if otp.Attempts >= s.cfg.MaxAttempts {
		return apperrors.ErrOTPTooManyAttempts
	}
	if otp.Expired(s.now()) {
		return apperrors.ErrOTPExpired
	}

	// The attempt is taken before comparing so parallel guesses cannot share one slot.
	reserved, err := s.otpRepo.ReserveAttempt(ctx, otp.ID, s.cfg.MaxAttempts)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if !reserved {
		return apperrors.ErrOTPTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		if otp.Attempts+1 >= s.cfg.MaxAttempts {
			return apperrors.ErrOTPTooManyAttempts
		}
		return apperrors.ErrOTPInvalid
	}

	consumed, err := s.otpRepo.Consume(ctx, otp.ID)
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if !consumed {
		return apperrors.ErrOTPInvalid
	}

	if purpose == model.OTPPurposeEmailVerification {
		user, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
			return fmt.Errorf("mark verified: %w", err)
		}
		logger.WithContext(ctx).Info("email verified", "user_id", user.ID)
	}
	return nil
}

// PurgeExpired deletes codes that expired before now.
func (s *otpService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.otpRepo.DeleteExpired(ctx, s.now())
}
