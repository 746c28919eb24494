package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotelms/internal/cache"
	apperrors "hotelms/internal/errors"
	"hotelms/internal/mailer"
	"hotelms/internal/model"
)

var otpNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestOTPService(otps *MockOTPRepository, users *MockUserRepository, m *MockMailer) *otpService {
	return &otpService{
		otpRepo:  otps,
		userRepo: users,
		mailer:   m,
		cfg:      OTPConfig{TTL: 10 * time.Minute, ResendCooldown: time.Minute, MaxAttempts: 3},
		now:      func() time.Time { return otpNow },
		generate: func() (string, error) { return "123456", nil },
	}
}

func storedOTP(t *testing.T, code string, attempts int, expiresAt time.Time) *model.OTP {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.OTP{
		ID:        uuid.New(),
		Email:     "guest@example.com",
		Purpose:   model.OTPPurposeEmailVerification,
		CodeHash:  string(hash),
		Attempts:  attempts,
		ExpiresAt: expiresAt,
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Len(t, code, otpDigits)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}

func TestOTPService_Send(t *testing.T) {
	t.Run("stores hashed code and mails it", func(t *testing.T) {
		otps := new(MockOTPRepository)
		users := new(MockUserRepository)
		m := new(MockMailer)

		users.On("FindByEmail", mock.Anything, "guest@example.com").Return(&model.User{ID: uuid.New(), Name: "Guest", Email: "guest@example.com"}, nil)
		otps.On("InvalidateActive", mock.Anything, "guest@example.com", model.OTPPurposeEmailVerification).Return(nil)
		otps.On("Create", mock.Anything, mock.MatchedBy(func(o *model.OTP) bool {
			return o.CodeHash != "123456" &&
				bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte("123456")) == nil &&
				o.ExpiresAt.Equal(otpNow.Add(10*time.Minute))
		})).Return(nil)
		m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
			return msg.ToEmail == "guest@example.com" && strings.Contains(msg.Text, "123456")
		})).Return(nil)

		svc := newTestOTPService(otps, users, m)
		require.NoError(t, svc.Send(context.Background(), "Guest@Example.com", model.OTPPurposeEmailVerification))

		otps.AssertExpectations(t)
		users.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("already verified", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByEmail", mock.Anything, "guest@example.com").Return(&model.User{EmailVerified: true}, nil)

		svc := newTestOTPService(new(MockOTPRepository), users, new(MockMailer))
		err := svc.Send(context.Background(), "guest@example.com", model.OTPPurposeEmailVerification)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
	})

	t.Run("unknown email for verification", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newTestOTPService(new(MockOTPRepository), users, new(MockMailer))
		err := svc.Send(context.Background(), "ghost@example.com", model.OTPPurposeEmailVerification)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("unknown email for password reset is silent", func(t *testing.T) {
		users := new(MockUserRepository)
		otps := new(MockOTPRepository)
		m := new(MockMailer)
		users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newTestOTPService(otps, users, m)
		assert.NoError(t, svc.Send(context.Background(), "ghost@example.com", model.OTPPurposePasswordReset))
		otps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestOTPService_Verify(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		otp           func(t *testing.T) *model.OTP
		setupMock     func(*MockOTPRepository, *MockUserRepository, *model.OTP)
		expectedError error
	}{
		{
			name: "valid code verifies email",
			code: "123456",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 0, otpNow.Add(time.Minute))
			},
			setupMock: func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {
				userID := uuid.New()
				o.On("ReserveAttempt", mock.Anything, otp.ID, 3).Return(true, nil)
				o.On("Consume", mock.Anything, otp.ID).Return(true, nil)
				u.On("FindByEmail", mock.Anything, "guest@example.com").Return(&model.User{ID: userID}, nil)
				u.On("MarkEmailVerified", mock.Anything, userID).Return(nil)
			},
		},
		{
			name: "wrong code increments attempts",
			code: "654321",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 0, otpNow.Add(time.Minute))
			},
			setupMock: func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {
				o.On("ReserveAttempt", mock.Anything, otp.ID, 3).Return(true, nil)
			},
			expectedError: apperrors.ErrOTPInvalid,
		},
		{
			name: "last wrong guess locks the code",
			code: "654321",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 2, otpNow.Add(time.Minute))
			},
			setupMock: func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {
				o.On("ReserveAttempt", mock.Anything, otp.ID, 3).Return(true, nil)
			},
			expectedError: apperrors.ErrOTPTooManyAttempts,
		},
		{
			name: "attempts exhausted",
			code: "123456",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 3, otpNow.Add(time.Minute))
			},
			setupMock:     func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {},
			expectedError: apperrors.ErrOTPTooManyAttempts,
		},
		{
			name: "attempt slot taken by a parallel guess",
			code: "123456",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 2, otpNow.Add(time.Minute))
			},
			setupMock: func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {
				o.On("ReserveAttempt", mock.Anything, otp.ID, 3).Return(false, nil)
			},
			expectedError: apperrors.ErrOTPTooManyAttempts,
		},
		{
			name: "expired code",
			code: "123456",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 0, otpNow.Add(-time.Second))
			},
			setupMock:     func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {},
			expectedError: apperrors.ErrOTPExpired,
		},
		{
			name: "code consumed concurrently",
			code: "123456",
			otp: func(t *testing.T) *model.OTP {
				return storedOTP(t, "123456", 0, otpNow.Add(time.Minute))
			},
			setupMock: func(o *MockOTPRepository, u *MockUserRepository, otp *model.OTP) {
				o.On("ReserveAttempt", mock.Anything, otp.ID, 3).Return(true, nil)
				o.On("Consume", mock.Anything, otp.ID).Return(false, nil)
			},
			expectedError: apperrors.ErrOTPInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otps := new(MockOTPRepository)
			users := new(MockUserRepository)
			otp := tt.otp(t)
			otps.On("FindLatestActive", mock.Anything, "guest@example.com", model.OTPPurposeEmailVerification).Return(otp, nil)
			tt.setupMock(otps, users, otp)

			svc := newTestOTPService(otps, users, new(MockMailer))
			err := svc.Verify(context.Background(), "guest@example.com", model.OTPPurposeEmailVerification, tt.code)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			otps.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

// memoryOTPRepository keeps codes in memory with the same conditional
// semantics as the SQL repository.
type memoryOTPRepository struct {
	mu       sync.Mutex
	otps     map[uuid.UUID]*model.OTP
	reserved int
}

func (m *memoryOTPRepository) Create(ctx context.Context, otp *model.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[otp.ID] = otp
	return nil
}

func (m *memoryOTPRepository) FindLatestActive(ctx context.Context, email string, purpose model.OTPPurpose) (*model.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, otp := range m.otps {
		if otp.Email == email && otp.Purpose == purpose && otp.ConsumedAt == nil {
			cp := *otp
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryOTPRepository) ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	otp, ok := m.otps[id]
	if !ok || otp.ConsumedAt != nil || otp.Attempts >= maxAttempts {
		return false, nil
	}
	otp.Attempts++
	m.reserved++
	return true, nil
}

func (m *memoryOTPRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	otp, ok := m.otps[id]
	if !ok || otp.ConsumedAt != nil {
		return false, nil
	}
	now := time.Now()
	otp.ConsumedAt = &now
	return true, nil
}

func (m *memoryOTPRepository) InvalidateActive(ctx context.Context, email string, purpose model.OTPPurpose) error {
	return nil
}

func (m *memoryOTPRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func TestOTPService_VerifyConcurrentGuessesRespectLimit(t *testing.T) {
	const maxAttempts = 5
	otp := storedOTP(t, "123456", 0, otpNow.Add(time.Minute))
	repo := &memoryOTPRepository{otps: map[uuid.UUID]*model.OTP{otp.ID: otp}}

	svc := &otpService{
		otpRepo: repo,
		cfg:     OTPConfig{TTL: 10 * time.Minute, MaxAttempts: maxAttempts},
		now:     func() time.Time { return otpNow },
	}

	var (
		wg      sync.WaitGroup
		invalid atomic.Int32
		locked  atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := svc.Verify(context.Background(), "guest@example.com", model.OTPPurposeEmailVerification, "000000")
			switch {
			case errors.Is(err, apperrors.ErrOTPInvalid):
				invalid.Add(1)
			case errors.Is(err, apperrors.ErrOTPTooManyAttempts):
				locked.Add(1)
			default:
				t.Errorf("unexpected result: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, maxAttempts, otp.Attempts)
	assert.Equal(t, maxAttempts, repo.reserved)
	// Only guesses that won a slot were compared against the hash.
	assert.LessOrEqual(t, invalid.Load(), int32(maxAttempts))
	assert.Equal(t, int32(50), invalid.Load()+locked.Load())

	err := svc.Verify(context.Background(), "guest@example.com", model.OTPPurposeEmailVerification, "123456")
	assert.ErrorIs(t, err, apperrors.ErrOTPTooManyAttempts)
}

func TestOTPService_SendCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = redisClient.Close() })

	otps := new(MockOTPRepository)
	users := new(MockUserRepository)
	m := new(MockMailer)
	users.On("FindByEmail", mock.Anything, "guest@example.com").Return(&model.User{ID: uuid.New(), Email: "guest@example.com"}, nil)
	otps.On("InvalidateActive", mock.Anything, "guest@example.com", model.OTPPurposeEmailVerification).Return(nil)
	otps.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.On("Send", mock.Anything, mock.Anything).Return(nil)

	svc := newTestOTPService(otps, users, m)
	svc.cache = redisClient
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "guest@example.com", model.OTPPurposeEmailVerification))
	err := svc.Send(ctx, "guest@example.com", model.OTPPurposeEmailVerification)
	assert.ErrorIs(t, err, apperrors.ErrOTPCooldown)
	otps.AssertNumberOfCalls(t, "Create", 1)
	m.AssertNumberOfCalls(t, "Send", 1)

	// Password reset codes have their own cooldown.
	otps.On("InvalidateActive", mock.Anything, "guest@example.com", model.OTPPurposePasswordReset).Return(nil)
	require.NoError(t, svc.Send(ctx, "guest@example.com", model.OTPPurposePasswordReset))

	mr.FastForward(time.Minute)
	require.NoError(t, svc.Send(ctx, "guest@example.com", model.OTPPurposeEmailVerification))
	otps.AssertNumberOfCalls(t, "Create", 3)
}

func TestOTPService_VerifyWithoutCode(t *testing.T) {
	otps := new(MockOTPRepository)
	otps.On("FindLatestActive", mock.Anything, "guest@example.com", model.OTPPurposePasswordReset).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestOTPService(otps, new(MockUserRepository), new(MockMailer))
	err := svc.Verify(context.Background(), "guest@example.com", model.OTPPurposePasswordReset, "123456")
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalid)
}

func TestOTPService_PurgeExpired(t *testing.T) {
	otps := new(MockOTPRepository)
	otps.On("DeleteExpired", mock.Anything, otpNow).Return(int64(4), nil)

	svc := newTestOTPService(otps, new(MockUserRepository), new(MockMailer))
	n, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
