package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotVerified is returned when a customer logs in before verifying the email.
	ErrEmailNotVerified = errors.New("email address is not verified")
	// ErrAlreadyVerified is returned when verification is requested for a verified email.
	ErrAlreadyVerified = errors.New("email address is already verified")
	// ErrAccountInactive is returned when the account has been disabled.
	ErrAccountInactive = errors.New("account is not active")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrAdminSignupDisabled is returned when no admin signup key is configured.
	ErrAdminSignupDisabled = errors.New("admin registration is disabled")
	// ErrInvalidAdminKey is returned when the admin signup key does not match.
	ErrInvalidAdminKey = errors.New("invalid admin signup key")
	// ErrForbidden is returned when the caller may not act on a resource.
	ErrForbidden = errors.New("forbidden")

	// ErrOTPInvalid is returned when the code does not match or no code is active.
	ErrOTPInvalid = errors.New("invalid verification code")
	// ErrOTPExpired is returned when the latest code has expired.
	ErrOTPExpired = errors.New("verification code has expired")
	// ErrOTPTooManyAttempts is returned when the code has been guessed too often.
	ErrOTPTooManyAttempts = errors.New("too many verification attempts")
	// ErrOTPCooldown is returned when a new code is requested too soon.
	ErrOTPCooldown = errors.New("please wait before requesting another code")

	// ErrRoomTypeNotFound is returned when a room type does not exist.
	ErrRoomTypeNotFound = errors.New("room type not found")
	// ErrRoomTypeExists is returned when a room type name is taken.
	ErrRoomTypeExists = errors.New("room type already exists")
	// ErrRoomTypeInUse is returned when deleting a room type that rooms still reference.
	ErrRoomTypeInUse = errors.New("room type is used by existing rooms")
	// ErrInvalidPrice is returned when a nightly price is not positive.
	ErrInvalidPrice = errors.New("price per night must be greater than zero")
	// ErrInvalidCapacity is returned when a room type holds no guests.
	ErrInvalidCapacity = errors.New("capacity must be at least one guest")

	// ErrRoomNotFound is returned when a room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNumberTaken is returned when a room number is already used.
	ErrRoomNumberTaken = errors.New("room number already exists")
	// ErrRoomUnavailable is returned when the room cannot be reserved.
	ErrRoomUnavailable = errors.New("room is not available")
	// ErrRoomInUse is returned when a room is held by an active booking.
	ErrRoomInUse = errors.New("room is held by an active booking")
	// ErrInvalidRoomStatus is returned when an admin sets a status reserved for bookings.
	ErrInvalidRoomStatus = errors.New("room status can only be set to available or maintenance")

	// ErrBookingNotFound is returned when a booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInvalidDates is returned for an empty or past stay.
	ErrInvalidDates = errors.New("check-out must be after check-in and check-in cannot be in the past")
	// ErrTooManyGuests is returned when guests exceed the room type capacity.
	ErrTooManyGuests = errors.New("number of guests exceeds room capacity")
	// ErrInvalidBookingTransition is returned when a booking cannot move to the requested status.
	ErrInvalidBookingTransition = errors.New("booking cannot change to the requested status")

	// ErrPaymentNotFound is returned when no payment exists for a booking.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrBookingNotPayable is returned when a payment intent is requested for a non-pending booking.
	ErrBookingNotPayable = errors.New("booking is not awaiting payment")
	// ErrInvalidWebhook is returned when a webhook payload fails verification.
	ErrInvalidWebhook = errors.New("invalid webhook payload")
	// ErrPaymentGateway is returned when the payment provider rejects a call.
	ErrPaymentGateway = errors.New("payment provider error")

	// ErrStorageDisabled is returned when image storage is not configured.
	ErrStorageDisabled = errors.New("image storage is not configured")
	// ErrInvalidImage is returned for unsupported uploads.
	ErrInvalidImage = errors.New("unsupported image upload")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	err    error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrEmailNotVerified, http.StatusForbidden, "EMAIL_NOT_VERIFIED"},
	{ErrAlreadyVerified, http.StatusConflict, "ALREADY_VERIFIED"},
	{ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrAdminSignupDisabled, http.StatusForbidden, "ADMIN_SIGNUP_DISABLED"},
	{ErrInvalidAdminKey, http.StatusForbidden, "INVALID_ADMIN_KEY"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrOTPInvalid, http.StatusBadRequest, "OTP_INVALID"},
	{ErrOTPExpired, http.StatusBadRequest, "OTP_EXPIRED"},
	{ErrOTPTooManyAttempts, http.StatusTooManyRequests, "OTP_TOO_MANY_ATTEMPTS"},
	{ErrOTPCooldown, http.StatusTooManyRequests, "OTP_COOLDOWN"},
	{ErrRoomTypeNotFound, http.StatusNotFound, "ROOM_TYPE_NOT_FOUND"},
	{ErrRoomTypeExists, http.StatusConflict, "ROOM_TYPE_EXISTS"},
	{ErrRoomTypeInUse, http.StatusConflict, "ROOM_TYPE_IN_USE"},
	{ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{ErrInvalidCapacity, http.StatusBadRequest, "INVALID_CAPACITY"},
	{ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
	{ErrRoomNumberTaken, http.StatusConflict, "ROOM_NUMBER_TAKEN"},
	{ErrRoomUnavailable, http.StatusConflict, "ROOM_UNAVAILABLE"},
	{ErrRoomInUse, http.StatusConflict, "ROOM_IN_USE"},
	{ErrInvalidRoomStatus, http.StatusBadRequest, "INVALID_ROOM_STATUS"},
	{ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{ErrInvalidDates, http.StatusBadRequest, "INVALID_DATES"},
	{ErrTooManyGuests, http.StatusBadRequest, "TOO_MANY_GUESTS"},
	{ErrInvalidBookingTransition, http.StatusConflict, "INVALID_BOOKING_TRANSITION"},
	{ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
	{ErrBookingNotPayable, http.StatusConflict, "BOOKING_NOT_PAYABLE"},
	{ErrInvalidWebhook, http.StatusBadRequest, "INVALID_WEBHOOK"},
	{ErrPaymentGateway, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR"},
	{ErrStorageDisabled, http.StatusServiceUnavailable, "STORAGE_DISABLED"},
	{ErrInvalidImage, http.StatusBadRequest, "INVALID_IMAGE"},
}

// MapErrorToHTTP maps domain errors, including wrapped ones, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
