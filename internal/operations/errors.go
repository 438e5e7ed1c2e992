package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
)

// OperationError is a pipeline failure tied to the step that raised it
type OperationError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Step != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: message,
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(step string, timeout string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeTimeout,
		Step:    step,
		Message: fmt.Sprintf("step exceeded timeout of %s", timeout),
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// FailedStep returns the step ID carried by err, if any
func FailedStep(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Step
	}
	return ""
}
