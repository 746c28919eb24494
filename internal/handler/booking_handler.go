package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/model"
	"hotelms/internal/repository"
	"hotelms/internal/service"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookingService service.BookingService
	paymentService service.PaymentService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookingService service.BookingService, paymentService service.PaymentService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, paymentService: paymentService}
}

// CreateBookingRequest reserves a room. Dates use YYYY-MM-DD.
type CreateBookingRequest struct {
	RoomID   uuid.UUID `json:"room_id" validate:"required"`
	CheckIn  string    `json:"check_in" validate:"required,datetime=2006-01-02" example:"2026-11-01"`
	CheckOut string    `json:"check_out" validate:"required,datetime=2006-01-02" example:"2026-11-04"`
	Guests   int       `json:"guests" validate:"required,min=1,max=20"`
}

// ListBookingsQuery filters the booking listing.
type ListBookingsQuery struct {
	PageQuery
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed checked_in completed cancelled expired"`
	RoomID string `query:"room_id" validate:"omitempty,uuid"`
}

// Create godoc
// @Summary Book a room
// @Description Places a pending hold on an available room until payment or expiry.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking"
// @Success 201 {object} model.Booking
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	checkIn, errIn := time.Parse(time.DateOnly, req.CheckIn)
	checkOut, errOut := time.Parse(time.DateOnly, req.CheckOut)
	if errIn != nil || errOut != nil {
		return errorResponse(c, apperrors.ErrInvalidDates)
	}

	booking, err := h.bookingService.Create(c.Request().Context(), actor, service.CreateBookingInput{
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// List godoc
// @Summary List bookings
// @Description Customers see their own bookings, admins see all.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status"
// @Param room_id query string false "Room ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse[model.Booking]
// @Failure 400 {object} errors.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var q ListBookingsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	page := q.page()
	bookings, total, err := h.bookingService.List(c.Request().Context(), actor, repository.BookingFilter{
		RoomID: parseOptionalUUID(q.RoomID),
		Status: model.BookingStatus(q.Status),
		Page:   page,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, newListResponse(bookings, total, page))
}

// Get godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookingService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookingService.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// GetPayment godoc
// @Summary Get the payment of a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id}/payment [get]
func (h *BookingHandler) GetPayment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.paymentService.GetForBooking(c.Request().Context(), actor, id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, newPaymentResponse(p))
}

// Confirm godoc
// @Summary Confirm a pending booking
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.adminTransition(c, h.bookingService.Confirm)
}

// CheckIn godoc
// @Summary Check a guest in
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c echo.Context) error {
	return h.adminTransition(c, h.bookingService.CheckIn)
}

// CheckOut godoc
// @Summary Check a guest out
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/bookings/{id}/check-out [post]
func (h *BookingHandler) CheckOut(c echo.Context) error {
	return h.adminTransition(c, h.bookingService.CheckOut)
}

func (h *BookingHandler) adminTransition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Booking, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := fn(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}
