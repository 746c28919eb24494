package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are repositories bound to one database transaction.
type TxRepositories struct {
	Rooms    RoomRepository
	Bookings BookingRepository
	Payments PaymentRepository
}

// Transactor runs work inside a database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a GORM-backed transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithTransaction executes fn within a database transaction. Returning an error rolls back.
func (t *gormTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, TxRepositories{
			Rooms:    &roomRepository{db: tx},
			Bookings: &bookingRepository{db: tx},
			Payments: &paymentRepository{db: tx},
		})
	})
}
