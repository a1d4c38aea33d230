// Package apperror holds the error taxonomy shared by the sync pipeline.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks a missing or invalid order id. No state is changed.
	ErrValidation = errors.New("validation error")
	// ErrAlreadyProcessed marks a tripped idempotency guard. No state is changed.
	ErrAlreadyProcessed = errors.New("order already processed")
	// ErrNotEligible marks an operation requested for an order in the wrong state.
	ErrNotEligible = errors.New("order not eligible")
	// ErrNotFound marks an unknown order.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidToken marks a bad, expired or reused dealer action token.
	ErrInvalidToken = errors.New("invalid action token")
	// ErrOrderBusy marks an order locked by another request for too long.
	ErrOrderBusy = errors.New("order is being processed")
)

// Validation wraps ErrValidation with a reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// TransportError is a network level failure talking to a remote system.
// It is always safe to retry at the next scheduled opportunity.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteRejectedError is a non-2xx answer from a remote system.
type RemoteRejectedError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("%s: remote rejected with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// NotificationDeliveryError is a failed outbound message.
type NotificationDeliveryError struct {
	To  string
	Err error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.To, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err may succeed on a later attempt.
func IsRetryable(err error) bool {
	var transport *TransportError
	var rejected *RemoteRejectedError
	var delivery *NotificationDeliveryError
	return errors.As(err, &transport) || errors.As(err, &rejected) || errors.As(err, &delivery)
}

// HTTPStatus maps an error to the status code returned to a human caller.
func HTTPStatus(err error) int {
	var transport *TransportError
	var rejected *RemoteRejectedError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrNotEligible), errors.Is(err, ErrOrderBusy):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden
	case errors.As(err, &transport):
		return http.StatusGatewayTimeout
	case errors.As(err, &rejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
