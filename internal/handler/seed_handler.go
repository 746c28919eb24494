package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelms/internal/errors"
	"hotelms/internal/service"
)

// maxCatalogSize caps an uploaded catalog document.
const maxCatalogSize = 1 << 20

// SeedHandler handles catalog seeding.
type SeedHandler struct {
	catalogService service.CatalogService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(catalogService service.CatalogService) *SeedHandler {
	return &SeedHandler{catalogService: catalogService}
}

// Seed godoc
// @Summary Seed room types and rooms
// @Description Upserts the posted catalog, or the built-in one when the body is empty. Safe to repeat.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.Catalog false "Catalog"
// @Success 200 {object} service.SeedResult
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCatalogSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "failed to read request body",
			Code:  "INVALID_REQUEST",
		})
	}

	var catalog *service.Catalog
	if len(body) == 0 {
		catalog, err = service.DefaultCatalog()
	} else {
		catalog, err = service.ParseCatalog(body)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CATALOG",
		})
	}

	result, err := h.catalogService.Seed(c.Request().Context(), catalog)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
