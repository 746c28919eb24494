package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotelms/internal/model"
)

// OTPRepository defines one-time code persistence operations.
type OTPRepository interface {
	Create(ctx context.Context, otp *model.OTP) error
	FindLatestActive(ctx context.Context, email string, purpose model.OTPPurpose) (*model.OTP, error)
	// ReserveAttempt counts one guess against the code. It reports false when
	// the code is already consumed or has used up its attempts.
	ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (bool, error)
	// Consume marks the code used. It reports false when the code was already consumed.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	InvalidateActive(ctx context.Context, email string, purpose model.OTPPurpose) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Create stores a new hashed code.
func (r *otpRepository) Create(ctx context.Context, otp *model.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// FindLatestActive returns the newest unconsumed code for an email and purpose.
func (r *otpRepository) FindLatestActive(ctx context.Context, email string, purpose model.OTPPurpose) (*model.OTP, error) {
	var otp model.OTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// ReserveAttempt increments the attempt counter only while it is below the limit.
func (r *otpRepository) ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("id = ? AND attempts < ? AND consumed_at IS NULL", id, maxAttempts).
		Update("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Consume marks the code used exactly once.
func (r *otpRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// InvalidateActive consumes every outstanding code so only the newest one works.
func (r *otpRepository) InvalidateActive(ctx context.Context, email string, purpose model.OTPPurpose) error {
	return r.db.WithContext(ctx).Model(&model.OTP{}).
		Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose).
		Update("consumed_at", time.Now()).Error
}

// DeleteExpired removes codes that expired before the given time.
func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&model.OTP{})
	return res.RowsAffected, res.Error
}
