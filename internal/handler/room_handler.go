package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hotelms/internal/model"
	"hotelms/internal/repository"
	"hotelms/internal/service"
)

// RoomHandler handles room endpoints.
type RoomHandler struct {
	roomService service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoomRequest adds a room.
type CreateRoomRequest struct {
	Number     string    `json:"number" validate:"required,max=20"`
	Floor      int       `json:"floor" validate:"min=0,max=200"`
	RoomTypeID uuid.UUID `json:"room_type_id" validate:"required"`
	Notes      string    `json:"notes" validate:"max=500"`
}

// UpdateRoomRequest changes a room. Omitted fields are left unchanged.
type UpdateRoomRequest struct {
	Number     *string           `json:"number" validate:"omitempty,min=1,max=20"`
	Floor      *int              `json:"floor" validate:"omitempty,min=0,max=200"`
	RoomTypeID *uuid.UUID        `json:"room_type_id"`
	Notes      *string           `json:"notes" validate:"omitempty,max=500"`
	Status     *model.RoomStatus `json:"status" validate:"omitempty,oneof=available maintenance"`
}

// ListRoomsQuery filters the room listing.
type ListRoomsQuery struct {
	PageQuery
	Status     string `query:"status" validate:"omitempty,oneof=available reserved occupied maintenance"`
	RoomTypeID string `query:"room_type_id" validate:"omitempty,uuid"`
}

// AvailableRoomsQuery filters available rooms.
type AvailableRoomsQuery struct {
	PageQuery
	Guests     int    `query:"guests" validate:"omitempty,min=1,max=20"`
	RoomTypeID string `query:"room_type_id" validate:"omitempty,uuid"`
}

func parseOptionalUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// List godoc
// @Summary List rooms
// @Tags rooms
// @Produce json
// @Param status query string false "available, reserved, occupied or maintenance"
// @Param room_type_id query string false "Room type ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse[model.Room]
// @Failure 400 {object} errors.ErrorResponse
// @Router /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	var q ListRoomsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	page := q.page()
	rooms, total, err := h.roomService.List(c.Request().Context(), repository.RoomFilter{
		Status:     model.RoomStatus(q.Status),
		RoomTypeID: parseOptionalUUID(q.RoomTypeID),
		Page:       page,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, newListResponse(rooms, total, page))
}

// ListAvailable godoc
// @Summary List available rooms
// @Tags rooms
// @Produce json
// @Param guests query int false "Number of guests" default(1)
// @Param room_type_id query string false "Room type ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse[model.Room]
// @Failure 400 {object} errors.ErrorResponse
// @Router /rooms/available [get]
func (h *RoomHandler) ListAvailable(c echo.Context) error {
	var q AvailableRoomsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	page := q.page()
	rooms, total, err := h.roomService.ListAvailable(c.Request().Context(), parseOptionalUUID(q.RoomTypeID), q.Guests, page)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, newListResponse(rooms, total, page))
}

// Get godoc
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} model.Room
// @Failure 404 {object} errors.ErrorResponse
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.roomService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Create godoc
// @Summary Create a room
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRoomRequest true "Room"
// @Success 201 {object} model.Room
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.roomService.Create(c.Request().Context(), service.RoomInput{
		Number:     req.Number,
		Floor:      req.Floor,
		RoomTypeID: req.RoomTypeID,
		Notes:      req.Notes,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Update godoc
// @Summary Update a room
// @Description Status may only be set to available or maintenance.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body UpdateRoomRequest true "Changes"
// @Success 200 {object} model.Room
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/rooms/{id} [put]
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.roomService.Update(c.Request().Context(), id, service.RoomUpdate{
		Number:     req.Number,
		Floor:      req.Floor,
		RoomTypeID: req.RoomTypeID,
		Notes:      req.Notes,
		Status:     req.Status,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete godoc
// @Summary Delete a room
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/rooms/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.roomService.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
