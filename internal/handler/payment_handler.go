package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hotelms/internal/errors"
	"hotelms/internal/model"
	"hotelms/internal/service"
)

// maxWebhookSize caps the webhook body read into memory.
const maxWebhookSize = 64 << 10

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateIntentRequest asks for a payment intent for a pending booking.
type CreateIntentRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}

// PaymentResponse represents a payment.
type PaymentResponse struct {
	ID               string          `json:"id"`
	BookingID        string          `json:"booking_id"`
	Provider         string          `json:"provider"`
	ProviderIntentID string          `json:"provider_intent_id"`
	Amount           decimal.Decimal `json:"amount" swaggertype:"string" example:"267.00"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PaymentIntentResponse carries the client secret the payer confirms with.
type PaymentIntentResponse struct {
	PaymentResponse
	ClientSecret string `json:"client_secret"`
}

func newPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID.String(),
		BookingID:        p.BookingID.String(),
		Provider:         p.Provider,
		ProviderIntentID: p.ProviderIntentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

// CreateIntent godoc
// @Summary Create a payment intent for a booking
// @Description Returns the open intent when one already exists for the booking.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIntentRequest true "Booking to pay"
// @Success 201 {object} PaymentIntentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /payments/intents [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req CreateIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.paymentService.CreateIntent(c.Request().Context(), actor, req.BookingID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, PaymentIntentResponse{
		PaymentResponse: newPaymentResponse(p),
		ClientSecret:    p.ClientSecret,
	})
}

// Webhook godoc
// @Summary Receive payment provider events
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "failed to read request body",
			Code:  "INVALID_REQUEST",
		})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "received"})
}
