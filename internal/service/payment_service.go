package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/payment"
	"hotelms/internal/repository"
)

// Payment log events.
const (
	paymentEventIntentCreated  = "intent_created"
	paymentEventSucceeded      = "payment_succeeded"
	paymentEventFailed         = "payment_failed"
	paymentEventCanceled       = "intent_canceled"
	paymentEventCancelFailed   = "intent_cancel_failed"
	paymentEventRefundRequired = "refund_required"
)

// IntentCanceller cancels the open payment intent of a booking.
type IntentCanceller interface {
	CancelForBooking(ctx context.Context, bookingID uuid.UUID) error
}

// BookingConfirmer confirms a booking once it is paid.
type BookingConfirmer interface {
	Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error)
}

// PaymentService tracks provider payment intents for bookings.
type PaymentService interface {
	IntentCanceller
	CreateIntent(ctx context.Context, actor Actor, bookingID uuid.UUID) (*model.Payment, error)
	GetForBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*model.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type intentCanceller struct {
	paymentRepo repository.PaymentRepository
	gateway     payment.Gateway
	logs        *PaymentLogWriter
}

// NewIntentCanceller creates the component bookings use to release payment intents.
func NewIntentCanceller(paymentRepo repository.PaymentRepository, gateway payment.Gateway, logs *PaymentLogWriter) IntentCanceller {
	return &intentCanceller{paymentRepo: paymentRepo, gateway: gateway, logs: logs}
}

// CancelForBooking cancels the newest intent of a booking if it can still be paid.
func (c *intentCanceller) CancelForBooking(ctx context.Context, bookingID uuid.UUID) error {
	p, err := c.paymentRepo.FindLatestByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find payment: %w", err)
	}
	if !p.Status.IsOpen() {
		return nil
	}

	if err := c.gateway.CancelIntent(ctx, p.ProviderIntentID); err != nil {
		c.logs.Record(ctx, p.ID, paymentEventCancelFailed, p.Status, err.Error())
		return fmt.Errorf("%w: %v", apperrors.ErrPaymentGateway, err)
	}

	p.Status = model.PaymentStatusCanceled
	if err := c.paymentRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	c.logs.Record(ctx, p.ID, paymentEventCanceled, p.Status, "")
	return nil
}

type paymentService struct {
	IntentCanceller
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	gateway     payment.Gateway
	bookings    BookingConfirmer
	logs        *PaymentLogWriter
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	gateway payment.Gateway,
	canceller IntentCanceller,
	bookings BookingConfirmer,
	logs *PaymentLogWriter,
) PaymentService {
	return &paymentService{
		IntentCanceller: canceller,
		paymentRepo:     paymentRepo,
		bookingRepo:     bookingRepo,
		userRepo:        userRepo,
		gateway:         gateway,
		bookings:        bookings,
		logs:            logs,
	}
}

// CreateIntent returns the open intent of a pending booking, creating one with
// the provider when none exists.
func (s *paymentService) CreateIntent(ctx context.Context, actor Actor, bookingID uuid.UUID) (*model.Payment, error) {
	booking, err := s.ownedBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusPending {
		return nil, apperrors.ErrBookingNotPayable
	}

	existing, err := s.paymentRepo.FindLatestByBooking(ctx, bookingID)
	if err == nil && existing.Status.IsOpen() {
		return existing, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	var email string
	if customer, err := s.userRepo.FindByID(ctx, booking.CustomerID); err == nil {
		email = customer.Email
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		BookingID:      booking.ID.String(),
		Amount:         booking.TotalAmount,
		Currency:       booking.Currency,
		CustomerEmail:  email,
		IdempotencyKey: "booking-" + booking.ID.String(),
	})
	if err != nil {
		logger.WithContext(ctx).Error("create payment intent", "error", err, "booking_id", bookingID)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentGateway, err)
	}

	p := &model.Payment{
		BookingID:        booking.ID,
		Provider:         s.gateway.Name(),
		ProviderIntentID: intent.ID,
		ClientSecret:     intent.ClientSecret,
		Amount:           booking.TotalAmount,
		Currency:         booking.Currency,
		Status:           model.PaymentStatusRequiresPayment,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		// A concurrent request stored the same intent first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.paymentRepo.FindByIntentID(ctx, intent.ID)
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logs.Record(ctx, p.ID, paymentEventIntentCreated, p.Status, "")
	logger.WithContext(ctx).Info("payment intent created", "payment_id", p.ID, "booking_id", bookingID, "provider", p.Provider)
	return p, nil
}

func (s *paymentService) GetForBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*model.Payment, error) {
	if _, err := s.ownedBooking(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.FindLatestByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return p, nil
}

// HandleWebhook applies a verified provider event. Unknown intents and event
// types are acknowledged without changes.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := logger.WithContext(ctx)

	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		log.Warn("reject webhook", "error", err)
		return apperrors.ErrInvalidWebhook
	}
	if event.IntentID == "" {
		log.Debug("ignore webhook", "event_id", event.ID, "type", event.Type)
		return nil
	}

	p, err := s.paymentRepo.FindByIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("webhook for unknown intent", "event_id", event.ID, "intent_id", event.IntentID)
			return nil
		}
		return fmt.Errorf("find payment: %w", err)
	}

	switch event.Type {
	case payment.EventIntentSucceeded:
		if p.Status == model.PaymentStatusSucceeded {
			return nil
		}
		if err := s.setStatus(ctx, p, model.PaymentStatusSucceeded, paymentEventSucceeded, ""); err != nil {
			return err
		}
		if _, err := s.bookings.Confirm(ctx, p.BookingID); err != nil {
			if errors.Is(err, apperrors.ErrInvalidBookingTransition) {
				// Paid after the hold was released.
				s.logs.Record(ctx, p.ID, paymentEventRefundRequired, p.Status, err.Error())
				log.Warn("payment succeeded for inactive booking", "payment_id", p.ID, "booking_id", p.BookingID)
				return nil
			}
			return fmt.Errorf("confirm booking: %w", err)
		}
	case payment.EventIntentFailed:
		if p.Status != model.PaymentStatusRequiresPayment {
			return nil
		}
		return s.setStatus(ctx, p, model.PaymentStatusFailed, paymentEventFailed, event.Message)
	case payment.EventIntentCanceled:
		if p.Status == model.PaymentStatusCanceled || p.Status == model.PaymentStatusSucceeded {
			return nil
		}
		return s.setStatus(ctx, p, model.PaymentStatusCanceled, paymentEventCanceled, event.Message)
	default:
		log.Debug("ignore webhook", "event_id", event.ID, "type", event.Type)
	}
	return nil
}

func (s *paymentService) setStatus(ctx context.Context, p *model.Payment, status model.PaymentStatus, event, message string) error {
	p.Status = status
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	s.logs.Record(ctx, p.ID, event, status, message)
	logger.WithContext(ctx).Info("payment updated", "payment_id", p.ID, "booking_id", p.BookingID, "status", status)
	return nil
}

func (s *paymentService) ownedBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if !actor.IsAdmin() && booking.CustomerID != actor.UserID {
		return nil, apperrors.ErrBookingNotFound
	}
	return booking, nil
}
