package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hotelms/internal/auth"
	"hotelms/internal/handler"
	"hotelms/internal/logger"
	"hotelms/internal/model"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	OTP      *handler.OTPHandler
	RoomType *handler.RoomTypeHandler
	Room     *handler.RoomHandler
	Booking  *handler.BookingHandler
	Payment  *handler.PaymentHandler
	Seed     *handler.SeedHandler
}

// Security holds what the JWT middleware needs.
type Security struct {
	JWT    *auth.JWTService
	Tokens auth.TokenStoreInterface
}

// Register wires routes and middleware.
func Register(e *echo.Echo, sec Security, h Handlers) {
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/customers/register", h.Auth.RegisterCustomer)
	api.POST("/auth/admins/register", h.Auth.RegisterAdmin)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/otp/send", h.OTP.Send)
	api.POST("/auth/otp/verify", h.OTP.Verify)
	api.POST("/auth/password/reset", h.Auth.ResetPassword)

	api.GET("/room-types", h.RoomType.List)
	api.GET("/room-types/:id", h.RoomType.Get)
	api.GET("/rooms", h.Room.List)
	api.GET("/rooms/available", h.Room.ListAvailable)
	api.GET("/rooms/:id", h.Room.Get)

	// Provider callbacks authenticate by signature.
	api.POST("/payments/webhook", h.Payment.Webhook)

	// Secured routes (require JWT authentication)
	secured := api.Group("", auth.JWTMiddleware(sec.JWT, sec.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/me", h.Auth.Me)

	secured.POST("/bookings", h.Booking.Create)
	secured.GET("/bookings", h.Booking.List)
	secured.GET("/bookings/:id", h.Booking.Get)
	secured.POST("/bookings/:id/cancel", h.Booking.Cancel)
	secured.GET("/bookings/:id/payment", h.Booking.GetPayment)

	secured.POST("/payments/intents", h.Payment.CreateIntent)

	// Admin routes
	admin := secured.Group("/admin", auth.RequireRole(model.RoleAdmin))

	admin.POST("/room-types", h.RoomType.Create)
	admin.PUT("/room-types/:id", h.RoomType.Update)
	admin.DELETE("/room-types/:id", h.RoomType.Delete)
	admin.PUT("/room-types/:id/image", h.RoomType.UploadImage)

	admin.POST("/rooms", h.Room.Create)
	admin.PUT("/rooms/:id", h.Room.Update)
	admin.DELETE("/rooms/:id", h.Room.Delete)

	admin.POST("/bookings/:id/confirm", h.Booking.Confirm)
	admin.POST("/bookings/:id/check-in", h.Booking.CheckIn)
	admin.POST("/bookings/:id/check-out", h.Booking.CheckOut)

	admin.POST("/seed", h.Seed.Seed)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Default().Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
