package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

const (
	paymentLogBatchSize     = 10
	paymentLogFlushInterval = time.Second
)

// PaymentLogWriter records payment events asynchronously in batches.
type PaymentLogWriter struct {
	repo repository.PaymentLogRepository
	ch   chan model.PaymentLog
	done chan struct{}
	once sync.Once
}

// NewPaymentLogWriter starts the background writer.
func NewPaymentLogWriter(repo repository.PaymentLogRepository) *PaymentLogWriter {
	w := &PaymentLogWriter{
		repo: repo,
		ch:   make(chan model.PaymentLog, 100),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *PaymentLogWriter) run() {
	defer close(w.done)

	ctx := context.Background()
	batch := make([]model.PaymentLog, 0, paymentLogBatchSize)
	ticker := time.NewTicker(paymentLogFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.repo.CreateBatch(ctx, batch); err != nil {
			logger.Default().Error("write payment logs", "error", err, "count", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= paymentLogBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Record queues a log entry. When the queue is full the entry is written synchronously.
func (w *PaymentLogWriter) Record(ctx context.Context, paymentID uuid.UUID, event string, status model.PaymentStatus, message string) {
	if w == nil {
		return
	}
	entry := model.PaymentLog{
		PaymentID:    paymentID,
		Event:        event,
		Status:       status,
		ErrorMessage: message,
	}

	select {
	case w.ch <- entry:
	default:
		if err := w.repo.Create(ctx, &entry); err != nil {
			logger.WithContext(ctx).Error("write payment log", "error", err, "payment_id", paymentID)
		}
	}
}

// Close flushes queued entries and stops the writer. Record must not be called afterwards.
func (w *PaymentLogWriter) Close() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		close(w.ch)
		<-w.done
	})
}
