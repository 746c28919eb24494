package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/events"
	"hotelms/internal/logger"
	"hotelms/internal/mailer"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

const expireBatchSize = 100

// BookingConfig controls holds and pricing currency.
type BookingConfig struct {
	HoldTTL  time.Duration
	Currency string
}

// CreateBookingInput carries a reservation request.
type CreateBookingInput struct {
	RoomID   uuid.UUID
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// BookingService manages reservations and their lifecycle.
type BookingService interface {
	BookingConfirmer
	Create(ctx context.Context, actor Actor, in CreateBookingInput) (*model.Booking, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, actor Actor, filter repository.BookingFilter) ([]model.Booking, int64, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ExpireStale(ctx context.Context) (int, error)
}

type bookingEvent struct {
	BookingID   uuid.UUID           `json:"booking_id"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	RoomID      uuid.UUID           `json:"room_id"`
	Status      model.BookingStatus `json:"status"`
	CheckIn     string              `json:"check_in"`
	CheckOut    string              `json:"check_out"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Currency    string              `json:"currency"`
}

type bookingService struct {
	tx          repository.Transactor
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	payments    IntentCanceller
	publisher   events.Publisher
	mailer      mailer.Mailer
	cfg         BookingConfig
	now         func() time.Time
}

// NewBookingService creates a new booking service.
func NewBookingService(
	tx repository.Transactor,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	payments IntentCanceller,
	publisher events.Publisher,
	m mailer.Mailer,
	cfg BookingConfig,
) BookingService {
	return &bookingService{
		tx:          tx,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		payments:    payments,
		publisher:   publisher,
		mailer:      m,
		cfg:         cfg,
		now:         time.Now,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create reserves an available room and places a pending hold on it.
func (s *bookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*model.Booking, error) {
	now := s.now()
	checkIn := truncateDay(in.CheckIn)
	checkOut := truncateDay(in.CheckOut)
	if !checkOut.After(checkIn) || checkIn.Before(truncateDay(now.UTC())) {
		return nil, apperrors.ErrInvalidDates
	}
	guests := in.Guests
	if guests < 1 {
		guests = 1
	}

	var booking *model.Booking
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		room, err := repos.Rooms.FindByIDForUpdate(ctx, in.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRoomNotFound
			}
			return fmt.Errorf("lock room: %w", err)
		}
		if room.Status != model.RoomStatusAvailable || room.RoomType == nil {
			return apperrors.ErrRoomUnavailable
		}
		if guests > room.RoomType.Capacity {
			return apperrors.ErrTooManyGuests
		}

		nights := int(checkOut.Sub(checkIn).Hours() / 24)
		expiresAt := now.Add(s.cfg.HoldTTL)
		booking = &model.Booking{
			CustomerID:  actor.UserID,
			RoomID:      room.ID,
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			Guests:      guests,
			Nights:      nights,
			TotalAmount: room.RoomType.PricePerNight.Mul(decimal.NewFromInt(int64(nights))),
			Currency:    s.cfg.Currency,
			Status:      model.BookingStatusPending,
			ExpiresAt:   &expiresAt,
		}
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		if err := repos.Rooms.UpdateStatus(ctx, room.ID, model.RoomStatusReserved); err != nil {
			return fmt.Errorf("reserve room: %w", err)
		}
		room.Status = model.RoomStatusReserved
		booking.Room = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("booking created", "booking_id", booking.ID, "room_id", booking.RoomID, "nights", booking.Nights)
	s.publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

// Get returns a booking. Customers only see their own bookings.
func (s *bookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
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

func (s *bookingService) List(ctx context.Context, actor Actor, filter repository.BookingFilter) ([]model.Booking, int64, error) {
	if !actor.IsAdmin() {
		filter.CustomerID = actor.UserID
	}
	bookings, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, total, nil
}

// Cancel releases the room of a pending or confirmed booking.
func (s *bookingService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	booking, err := s.release(ctx, id, model.BookingStatusCancelled, false)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCancelled, booking)
	return booking, nil
}

// Confirm moves a pending booking to confirmed and mails the customer.
func (s *bookingService) Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.transition(ctx, id, model.BookingStatusConfirmed, "")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingConfirmed, booking)
	s.sendConfirmation(ctx, booking)
	return booking, nil
}

// CheckIn marks the guest arrived and the room occupied.
func (s *bookingService) CheckIn(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.transition(ctx, id, model.BookingStatusCheckedIn, model.RoomStatusOccupied)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCheckedIn, booking)
	return booking, nil
}

// CheckOut completes the stay and frees the room.
func (s *bookingService) CheckOut(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.transition(ctx, id, model.BookingStatusCompleted, model.RoomStatusAvailable)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCompleted, booking)
	return booking, nil
}

// ExpireStale expires pending bookings whose hold has lapsed and returns how many
// were expired.
func (s *bookingService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.bookingRepo.ListExpiredPending(ctx, s.now(), expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired bookings: %w", err)
	}

	expired := 0
	for _, b := range stale {
		booking, err := s.release(ctx, b.ID, model.BookingStatusExpired, true)
		if err != nil {
			// Confirmed or cancelled since it was listed.
			if errors.Is(err, apperrors.ErrInvalidBookingTransition) {
				continue
			}
			return expired, err
		}
		expired++
		s.publish(ctx, events.BookingExpired, booking)
	}
	return expired, nil
}

// transition moves a booking to next and optionally updates its room in the same
// transaction.
func (s *bookingService) transition(ctx context.Context, id uuid.UUID, next model.BookingStatus, roomStatus model.RoomStatus) (*model.Booking, error) {
	var booking *model.Booking
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		b, err := s.lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(next) {
			return apperrors.ErrInvalidBookingTransition
		}

		b.Status = next
		b.ExpiresAt = nil
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		if roomStatus != "" {
			if err := repos.Rooms.UpdateStatus(ctx, b.RoomID, roomStatus); err != nil {
				return fmt.Errorf("update room: %w", err)
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("booking updated", "booking_id", booking.ID, "status", booking.Status)
	return s.reload(ctx, booking), nil
}

// release cancels or expires a booking, frees its room and cancels the open
// payment intent. With onlyLapsed the hold must have passed its expiry.
func (s *bookingService) release(ctx context.Context, id uuid.UUID, next model.BookingStatus, onlyLapsed bool) (*model.Booking, error) {
	now := s.now()
	var booking *model.Booking
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		b, err := s.lockBooking(ctx, repos, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(next) {
			return apperrors.ErrInvalidBookingTransition
		}
		if onlyLapsed && (b.ExpiresAt == nil || b.ExpiresAt.After(now)) {
			return apperrors.ErrInvalidBookingTransition
		}

		b.Status = next
		b.ExpiresAt = nil
		if next == model.BookingStatusCancelled {
			b.CancelledAt = &now
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		if err := repos.Rooms.UpdateStatus(ctx, b.RoomID, model.RoomStatusAvailable); err != nil {
			return fmt.Errorf("release room: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx)
	log.Info("booking released", "booking_id", booking.ID, "status", booking.Status)
	if err := s.payments.CancelForBooking(ctx, booking.ID); err != nil {
		log.Warn("cancel payment intent", "error", err, "booking_id", booking.ID)
	}
	return s.reload(ctx, booking), nil
}

func (s *bookingService) lockBooking(ctx context.Context, repos repository.TxRepositories, id uuid.UUID) (*model.Booking, error) {
	b, err := repos.Bookings.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return b, nil
}

// reload fetches the booking with its room after a committed change.
func (s *bookingService) reload(ctx context.Context, booking *model.Booking) *model.Booking {
	fresh, err := s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		return booking
	}
	return fresh
}

func (s *bookingService) publish(ctx context.Context, subject string, b *model.Booking) {
	err := s.publisher.Publish(ctx, subject, bookingEvent{
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		RoomID:      b.RoomID,
		Status:      b.Status,
		CheckIn:     b.CheckIn.Format(time.DateOnly),
		CheckOut:    b.CheckOut.Format(time.DateOnly),
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("publish booking event", "error", err, "subject", subject, "booking_id", b.ID)
	}
}

func (s *bookingService) sendConfirmation(ctx context.Context, b *model.Booking) {
	log := logger.WithContext(ctx)
	customer, err := s.userRepo.FindByID(ctx, b.CustomerID)
	if err != nil {
		log.Warn("load customer for confirmation", "error", err, "booking_id", b.ID)
		return
	}

	roomNumber := b.RoomID.String()
	if b.Room != nil {
		roomNumber = b.Room.Number
	}
	total := b.TotalAmount.StringFixed(2) + " " + b.Currency
	msg := mailer.BookingConfirmedMessage(customer.Email, customer.Name, b.ID.String(), roomNumber, b.CheckIn, b.CheckOut, total)
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Warn("send booking confirmation", "error", err, "booking_id", b.ID)
	}
}
