package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/model"
	"hotelms/internal/service"
)

const maxImageSize = 5 << 20

// RoomTypeHandler handles room type endpoints.
type RoomTypeHandler struct {
	roomTypeService service.RoomTypeService
}

// NewRoomTypeHandler creates a new room type handler.
func NewRoomTypeHandler(roomTypeService service.RoomTypeService) *RoomTypeHandler {
	return &RoomTypeHandler{roomTypeService: roomTypeService}
}

// RoomTypeRequest creates or replaces a room type.
type RoomTypeRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=2000"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"string" example:"129.00"`
	Capacity      int             `json:"capacity" validate:"required,min=1,max=20"`
	Amenities     string          `json:"amenities" validate:"max=1000"`
}

func (r RoomTypeRequest) input() service.RoomTypeInput {
	return service.RoomTypeInput{
		Name:          r.Name,
		Description:   r.Description,
		PricePerNight: r.PricePerNight,
		Capacity:      r.Capacity,
		Amenities:     r.Amenities,
	}
}

// List godoc
// @Summary List room types
// @Tags room-types
// @Produce json
// @Success 200 {array} model.RoomType
// @Router /room-types [get]
func (h *RoomTypeHandler) List(c echo.Context) error {
	roomTypes, err := h.roomTypeService.List(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	if roomTypes == nil {
		roomTypes = []model.RoomType{}
	}
	return c.JSON(http.StatusOK, roomTypes)
}

// Get godoc
// @Summary Get a room type
// @Tags room-types
// @Produce json
// @Param id path string true "Room type ID"
// @Success 200 {object} model.RoomType
// @Failure 404 {object} errors.ErrorResponse
// @Router /room-types/{id} [get]
func (h *RoomTypeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	roomType, err := h.roomTypeService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, roomType)
}

// Create godoc
// @Summary Create a room type
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RoomTypeRequest true "Room type"
// @Success 201 {object} model.RoomType
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/room-types [post]
func (h *RoomTypeHandler) Create(c echo.Context) error {
	var req RoomTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	roomType, err := h.roomTypeService.Create(c.Request().Context(), req.input())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, roomType)
}

// Update godoc
// @Summary Update a room type
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room type ID"
// @Param request body RoomTypeRequest true "Room type"
// @Success 200 {object} model.RoomType
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/room-types/{id} [put]
func (h *RoomTypeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req RoomTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	roomType, err := h.roomTypeService.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, roomType)
}

// Delete godoc
// @Summary Delete a room type
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Room type ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/room-types/{id} [delete]
func (h *RoomTypeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.roomTypeService.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Upload a room type image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room type ID"
// @Param image formData file true "JPEG, PNG or WebP image, at most 5 MB"
// @Success 200 {object} model.RoomType
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /admin/room-types/{id}/image [put]
func (h *RoomTypeHandler) UploadImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil || fh.Size == 0 || fh.Size > maxImageSize {
		return errorResponse(c, apperrors.ErrInvalidImage)
	}
	file, err := fh.Open()
	if err != nil {
		return errorResponse(c, apperrors.ErrInvalidImage)
	}
	defer file.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		head := make([]byte, 512)
		n, _ := file.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, 0); err != nil {
			return errorResponse(c, apperrors.ErrInvalidImage)
		}
	}

	roomType, err := h.roomTypeService.UploadImage(c.Request().Context(), id, file, contentType)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, roomType)
}
