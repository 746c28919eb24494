package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelms/internal/model"
	"hotelms/internal/service"
)

// OTPHandler handles one-time code endpoints.
type OTPHandler struct {
	otpService service.OTPService
}

// NewOTPHandler creates a new OTP handler.
func NewOTPHandler(otpService service.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// SendOTPRequest asks for a new code.
type SendOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"omitempty,oneof=email_verification password_reset"`
}

// VerifyOTPRequest submits a code for email verification.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Send godoc
// @Summary Send a verification code
// @Description Purpose defaults to email_verification.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Email and purpose"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/otp/send [post]
func (h *OTPHandler) Send(c echo.Context) error {
	var req SendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	purpose := model.OTPPurpose(req.Purpose)
	if purpose == "" {
		purpose = model.OTPPurposeEmailVerification
	}

	if err := h.otpService.Send(c.Request().Context(), req.Email, purpose); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "if the account exists, a code has been sent"})
}

// Verify godoc
// @Summary Verify email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/otp/verify [post]
func (h *OTPHandler) Verify(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.otpService.Verify(c.Request().Context(), req.Email, model.OTPPurposeEmailVerification, req.Code); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}
