package register

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the register service.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrReceiptNotFound       = errors.New("receipt not found")
	ErrReceiptFinalized      = errors.New("receipt already finalized")
	ErrSettlementFailed      = errors.New("settlement failed")
	ErrReceiptConflict       = errors.New("receipt modified concurrently")
	ErrInvalidPrincipal      = errors.New("invalid principal")
	ErrInvalidItemID         = errors.New("invalid item id")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidReceiptID      = errors.New("invalid receipt id")
	ErrInvalidReceiptStatus  = errors.New("invalid receipt status")
	ErrInvalidServiceConfig  = errors.New("invalid service config")
	ErrInvalidListLimit      = errors.New("invalid list limit")
	ErrDuplicateReceiptEvent = errors.New("duplicate receipt event")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// settlementError keeps both the settlement sentinel and the token failure reachable through errors.Is.
type settlementError struct {
	cause error
}

func (failure settlementError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSettlementFailed, failure.cause)
}

func (failure settlementError) Unwrap() []error {
	return []error{ErrSettlementFailed, failure.cause}
}

func newSettlementError(subject string, code string, cause error) error {
	return WrapError(errorOperationService, subject, code, settlementError{cause: cause})
}
