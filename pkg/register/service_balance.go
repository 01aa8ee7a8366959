package register

import (
	"context"
	"fmt"
)

const maxReceiptEventsLimit = 500

// ViewBalance returns the register's settlement-token balance. Manager only.
func (service *Service) ViewBalance(requestContext context.Context, caller Principal) (Amount, error) {
	if err := service.requireManager(caller); err != nil {
		return 0, err
	}
	return service.tokens.BalanceOf(requestContext, service.roles.Register)
}

// ClaimTokens moves the register's entire balance to the manager and returns the amount moved. Manager only.
func (service *Service) ClaimTokens(requestContext context.Context, caller Principal) (Amount, error) {
	service.mutations.Lock()
	defer service.mutations.Unlock()

	var claimed Amount
	operationError := service.requireManager(caller)
	if operationError == nil {
		balance, err := service.tokens.BalanceOf(requestContext, service.roles.Register)
		if err != nil {
			operationError = err
		} else if err := service.tokens.Transfer(requestContext, service.roles.Register, service.roles.Manager, balance); err != nil {
			operationError = newSettlementError(errorSubjectRegister, errorCodeClaim, err)
		} else {
			claimed = balance
		}
	}
	service.logOperation(requestContext, OperationLog{
		Operation: operationClaimTokens,
		Caller:    caller,
		Amount:    claimed,
		Error:     operationError,
	})
	return claimed, operationError
}

// ReceiptEvents pages through ReceiptCreated events with ids greater than afterReceiptID.
func (service *Service) ReceiptEvents(requestContext context.Context, afterReceiptID int64, limit int) ([]ReceiptCreated, error) {
	if afterReceiptID < 0 {
		return nil, fmt.Errorf("%w: cursor must not be negative", ErrInvalidReceiptID)
	}
	if limit <= 0 || limit > maxReceiptEventsLimit {
		return nil, fmt.Errorf("%w: limit must be within 1..%d", ErrInvalidListLimit, maxReceiptEventsLimit)
	}
	return service.store.ListReceiptEvents(requestContext, afterReceiptID, limit)
}
