package helpers

import (
	"errors"
	"fmt"
	"sync"

	"sensor-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ DashboardError }
type NetworkError struct{ DashboardError }
type DecodeError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type IngestError struct{ DashboardError }

// -----------------------------------------------------------------------------

func NewNetworkError(message string, cause error) error {
	return &NetworkError{DashboardError{Message: message, Cause: cause}}
}

func NewDecodeError(message string, cause error) error {
	return &DecodeError{DashboardError{Message: message, Cause: cause}}
}

func NewValidationError(message string) error {
	return &ValidationError{DashboardError{Message: message}}
}

func NewIngestError(message string, cause error) error {
	return &IngestError{DashboardError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{DashboardError{Message: message, Cause: cause}}
}

// IsNetworkError reports whether err wraps a NetworkError.
func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsDecodeError reports whether err wraps a DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs failures and keeps a consecutive failure count for health reporting.
type ErrorHandler struct {
	Logger *logger.Logger

	mu         sync.Mutex
	errorCount int
	lastError  error
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorCount = 0
	e.lastError = nil
}

// -----------------------------------------------------------------------------

// Handle logs err under context and counts it. A nil error is ignored.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}

	e.mu.Lock()
	e.errorCount++
	e.lastError = err
	count := e.errorCount
	e.mu.Unlock()

	e.Logger.Error("Error in %s: %v (consecutive failures: %d)", context, err, count)
}

// -----------------------------------------------------------------------------

// State returns the consecutive failure count and the last error seen.
func (e *ErrorHandler) State() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorCount, e.lastError
}
