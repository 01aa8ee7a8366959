package token

import "context"

// LedgerOption configures a Ledger instance.
type LedgerOption func(*Ledger)

// OperationLogger records state-changing token operations.
type OperationLogger interface {
	LogTokenOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing token operation.
type OperationLog struct {
	Operation  string
	TransferID string
	Spender    Account
	From       Account
	To         Account
	Amount     Amount
	Status     string
	Error      error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) LedgerOption {
	return func(ledger *Ledger) {
		ledger.logger = logger
	}
}

// WithIDGenerator overrides the transfer id source.
func WithIDGenerator(generate func() string) LedgerOption {
	return func(ledger *Ledger) {
		if generate != nil {
			ledger.newID = generate
		}
	}
}
