package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code, so errors.Is works across WithError copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: 401,
	}

	ErrStaffNotFound = &AppError{
		Code:       "STAFF_NOT_FOUND",
		Message:    "Staff member not found",
		StatusCode: 404,
	}

	ErrCustomerNotFound = &AppError{
		Code:       "CUSTOMER_NOT_FOUND",
		Message:    "Customer not found",
		StatusCode: 404,
	}

	ErrCustomerExists = &AppError{
		Code:       "CUSTOMER_ALREADY_EXISTS",
		Message:    "An account with this email already exists",
		StatusCode: 409,
	}

	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Session not found",
		StatusCode: 401,
	}

	ErrSessionRevoked = &AppError{
		Code:       "SESSION_REVOKED",
		Message:    "Session has been revoked",
		StatusCode: 401,
	}

	ErrRestaurantNotFound = &AppError{
		Code:       "RESTAURANT_NOT_FOUND",
		Message:    "Restaurant not found",
		StatusCode: 404,
	}

	ErrRestaurantInactive = &AppError{
		Code:       "RESTAURANT_INACTIVE",
		Message:    "Restaurant account is inactive",
		StatusCode: 403,
	}

	ErrOrderNotFound = &AppError{
		Code:       "ORDER_NOT_FOUND",
		Message:    "Order not found",
		StatusCode: 404,
	}

	ErrInvalidOrderStatus = &AppError{
		Code:       "INVALID_ORDER_STATUS",
		Message:    "Unknown order status",
		StatusCode: 422,
	}

	ErrInvalidTransition = &AppError{
		Code:       "INVALID_STATUS_TRANSITION",
		Message:    "Order status transition not allowed",
		StatusCode: 422,
	}

	ErrWebhookNotFound = &AppError{
		Code:       "WEBHOOK_NOT_FOUND",
		Message:    "Webhook not found",
		StatusCode: 404,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
