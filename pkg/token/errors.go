package token

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the token ledger.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrBalanceOverflow       = errors.New("balance overflow")
	ErrSupplyAlreadyMinted   = errors.New("supply already minted")
	ErrInvalidMetadata       = errors.New("invalid token metadata")
	ErrInvalidTransferKind   = errors.New("invalid transfer kind")
	ErrInvalidListLimit      = errors.New("invalid list limit")
	ErrInvalidLedgerConfig   = errors.New("invalid ledger config")
)

// OperationError wraps a store failure with a stable operation code.
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

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{operation: operation, subject: subject, code: code, err: err}
}
