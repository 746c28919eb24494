package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// OTPPurgeSpec is the schedule for deleting spent and expired codes.
const OTPPurgeSpec = "@hourly"

// jobTimeout bounds a single run of any job.
const jobTimeout = 30 * time.Second

// BookingExpirer releases bookings whose payment hold has lapsed.
type BookingExpirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// OTPPurger removes codes that can no longer be used.
type OTPPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New registers the jobs. It does not start them.
func New(logger *slog.Logger, expirySpec string, bookings BookingExpirer, otps OTPPurger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}

	if _, err := s.cron.AddFunc(expirySpec, s.expireBookings(bookings)); err != nil {
		return nil, fmt.Errorf("schedule booking expiry %q: %w", expirySpec, err)
	}
	if _, err := s.cron.AddFunc(OTPPurgeSpec, s.purgeOTPs(otps)); err != nil {
		return nil, fmt.Errorf("schedule otp purge: %w", err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) expireBookings(bookings BookingExpirer) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := bookings.ExpireStale(ctx)
		if err != nil {
			s.logger.Error("booking expiry failed", "error", err, "expired", n)
			return
		}
		if n > 0 {
			s.logger.Info("expired stale bookings", "count", n)
		}
	}
}

func (s *Scheduler) purgeOTPs(otps OTPPurger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := otps.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("otp purge failed", "error", err)
			return
		}
		s.logger.Debug("purged otp codes", "count", n)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
