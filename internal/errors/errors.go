package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Business-rule errors of the settlement engine. These are distinguishable
	// from plain validation errors so the partner terminal can show the
	// specific reason.
	ErrInactiveSubscription = new(ErrCodeInactiveSubscription, "subscription is not active")
	ErrInsufficientPoints   = new(ErrCodeInsufficientPoints, "insufficient points balance")
	ErrInsufficientCashback = new(ErrCodeInsufficientCashback, "insufficient cashback balance")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:           http.StatusBadGateway,
		ErrDatabase:             http.StatusInternalServerError,
		ErrNotFound:             http.StatusNotFound,
		ErrAlreadyExists:        http.StatusConflict,
		ErrValidation:           http.StatusBadRequest,
		ErrInvalidOperation:     http.StatusBadRequest,
		ErrSystem:               http.StatusInternalServerError,
		ErrInactiveSubscription: http.StatusUnprocessableEntity,
		ErrInsufficientPoints:   http.StatusUnprocessableEntity,
		ErrInsufficientCashback: http.StatusUnprocessableEntity,
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"

	ErrCodeInactiveSubscription = "inactive_subscription"
	ErrCodeInsufficientPoints   = "insufficient_points"
	ErrCodeInsufficientCashback = "insufficient_cashback"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsInactiveSubscription checks if an error is an inactive subscription error
func IsInactiveSubscription(err error) bool {
	return errors.Is(err, ErrInactiveSubscription)
}

// IsInsufficientPoints checks if an error is an insufficient points error
func IsInsufficientPoints(err error) bool {
	return errors.Is(err, ErrInsufficientPoints)
}

// IsInsufficientCashback checks if an error is an insufficient cashback error
func IsInsufficientCashback(err error) bool {
	return errors.Is(err, ErrInsufficientCashback)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
