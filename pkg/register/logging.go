package register

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// EventPublisher receives ReceiptCreated events after the creating transaction commits.
type EventPublisher interface {
	PublishReceiptCreated(ctx context.Context, event ReceiptCreated)
}

// OperationLog describes a state-changing register operation.
type OperationLog struct {
	Operation string
	Caller    Principal
	ReceiptID ReceiptID
	ItemID    ItemID
	Amount    Amount
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithEventPublisher wires a subscriber for ReceiptCreated events.
func WithEventPublisher(publisher EventPublisher) ServiceOption {
	return func(service *Service) {
		service.publisher = publisher
	}
}

// WithAtomicSettlement declares that the TokenService writes through the store transaction passed in ctx,
// so a failed commit also rolls the token transfer back and no compensation is needed.
func WithAtomicSettlement() ServiceOption {
	return func(service *Service) {
		service.atomicSettlement = true
	}
}
