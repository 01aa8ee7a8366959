package register

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Service contains the catalog and receipt logic over a Store and a TokenService.
type Service struct {
	store     Store
	tokens    TokenService
	roles     Roles
	nowFn     func() int64
	logger    OperationLogger
	publisher EventPublisher

	// atomicSettlement is set when token transfers enlist in the store transaction.
	atomicSettlement bool

	// mutations serializes every state-changing call; reads never take it.
	mutations sync.Mutex
}

// NewService wires a Service. Roles are fixed for the lifetime of the returned value.
func NewService(store Store, tokens TokenService, roles Roles, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: token service dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	if err := roles.Validate(); err != nil {
		return nil, err
	}
	service := &Service{store: store, tokens: tokens, roles: roles, nowFn: now}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Roles returns the manager and register identities.
func (service *Service) Roles() Roles {
	return service.roles
}

// AddItem creates or overwrites a catalog price. Manager only.
func (service *Service) AddItem(ctx context.Context, caller Principal, itemID ItemID, price Price) error {
	service.mutations.Lock()
	defer service.mutations.Unlock()

	operationError := service.requireManager(caller)
	if operationError == nil {
		var entry CatalogEntry
		entry, operationError = NewCatalogEntry(itemID, price)
		if operationError == nil {
			operationError = service.store.UpsertItem(ctx, entry)
		}
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationAddItem,
		Caller:    caller,
		ItemID:    itemID,
		Amount:    Amount(price),
		Error:     operationError,
	})
	return operationError
}

// PriceOf returns the catalog price, or 0 for items that were never priced.
func (service *Service) PriceOf(ctx context.Context, itemID ItemID) (Price, error) {
	price, _, err := service.LookupPrice(ctx, itemID)
	return price, err
}

// LookupPrice returns the catalog price and whether the item is priced at all.
func (service *Service) LookupPrice(ctx context.Context, itemID ItemID) (Price, bool, error) {
	if itemID.value == "" {
		return 0, false, fmt.Errorf("%w: empty value", ErrInvalidItemID)
	}
	return service.store.GetItemPrice(ctx, itemID)
}

// NewReceipt opens an empty receipt for purchaser and returns its identifier.
// Anyone may open a receipt on behalf of any purchaser other than the register account.
func (service *Service) NewReceipt(ctx context.Context, caller Principal, purchaser Principal) (ReceiptID, error) {
	service.mutations.Lock()
	defer service.mutations.Unlock()

	var created ReceiptCreated
	var operationError error
	if purchaser.IsZero() {
		operationError = fmt.Errorf("%w: purchaser is required", ErrInvalidPrincipal)
	} else if purchaser == service.roles.Register {
		operationError = fmt.Errorf("%w: the register account cannot be a purchaser", ErrUnauthorized)
	} else {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			receiptID, err := transactionStore.NextReceiptID(ctx)
			if err != nil {
				return err
			}
			receipt, err := NewReceipt(receiptID, purchaser, 0, false)
			if err != nil {
				return err
			}
			if err := transactionStore.CreateReceipt(ctx, receipt); err != nil {
				return err
			}
			created = ReceiptCreated{
				Purchaser:      purchaser,
				ReceiptID:      receiptID,
				CreatedUnixUTC: service.nowFn(),
			}
			return transactionStore.RecordReceiptCreated(ctx, created)
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationNewReceipt,
		Caller:    caller,
		ReceiptID: created.ReceiptID,
		Error:     operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	if service.publisher != nil {
		service.publisher.PublishReceiptCreated(ctx, created)
	}
	return created.ReceiptID, nil
}

// RingUpItem adds the catalog price of itemID to the receipt total.
// Only the receipt's purchaser may ring up items, and only while the receipt is open.
func (service *Service) RingUpItem(ctx context.Context, caller Principal, receiptID ReceiptID, itemID ItemID) (Receipt, error) {
	service.mutations.Lock()
	defer service.mutations.Unlock()

	var (
		updated   Receipt
		itemPrice Price
	)
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if itemID.value == "" {
			return fmt.Errorf("%w: empty value", ErrInvalidItemID)
		}
		receipt, err := transactionStore.GetReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		if caller != receipt.Purchaser() {
			return fmt.Errorf("%w: only the purchaser may ring up items on receipt %d", ErrUnauthorized, receiptID)
		}
		if receipt.Finished() {
			return fmt.Errorf("%w: receipt %d", ErrReceiptFinalized, receiptID)
		}
		itemPrice, _, err = transactionStore.GetItemPrice(ctx, itemID)
		if err != nil {
			return err
		}
		total, err := receipt.TotalPrice().Add(itemPrice)
		if err != nil {
			return WrapError(errorOperationService, errorSubjectReceipt, errorCodeOverflow, err)
		}
		if err := transactionStore.UpdateReceiptTotal(ctx, receiptID, receipt.TotalPrice(), total); err != nil {
			return err
		}
		updated, err = NewReceipt(receiptID, receipt.Purchaser(), total, false)
		return err
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationRingUpItem,
		Caller:    caller,
		ReceiptID: receiptID,
		ItemID:    itemID,
		Amount:    Amount(itemPrice),
		Error:     operationError,
	})
	if operationError != nil {
		return Receipt{}, operationError
	}
	return updated, nil
}

// FinishReceipt finalizes a receipt and settles its total from the purchaser to the register.
// The flag flip and the token transfer commit together or not at all. Manager only.
func (service *Service) FinishReceipt(ctx context.Context, caller Principal, receiptID ReceiptID) (Receipt, error) {
	service.mutations.Lock()
	defer service.mutations.Unlock()

	var (
		settled     Receipt
		transferred bool
	)
	operationError := service.requireManager(caller)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			receipt, err := transactionStore.GetReceipt(ctx, receiptID)
			if err != nil {
				return err
			}
			if receipt.Finished() {
				return fmt.Errorf("%w: receipt %d", ErrReceiptFinalized, receiptID)
			}
			settled, err = NewReceipt(receiptID, receipt.Purchaser(), receipt.TotalPrice(), true)
			if err != nil {
				return err
			}
			if err := transactionStore.MarkReceiptFinished(ctx, receiptID); err != nil {
				return err
			}
			// The transfer is the last step so that nothing after it can roll the flag back.
			if err := service.tokens.TransferFrom(ctx, service.roles.Register, receipt.Purchaser(), service.roles.Register, receipt.TotalPrice()); err != nil {
				return newSettlementError(errorSubjectReceipt, errorCodeSettle, err)
			}
			transferred = true
			return nil
		})
		if operationError != nil && transferred && !service.atomicSettlement {
			operationError = service.compensateSettlement(ctx, caller, settled, operationError)
		}
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationFinishReceipt,
		Caller:    caller,
		ReceiptID: receiptID,
		Amount:    settled.TotalPrice(),
		Error:     operationError,
	})
	if operationError != nil {
		return Receipt{}, operationError
	}
	return settled, nil
}

// ViewReceipt returns a receipt. Anyone may view any receipt.
func (service *Service) ViewReceipt(ctx context.Context, receiptID ReceiptID) (Receipt, error) {
	return service.store.GetReceipt(ctx, receiptID)
}

// compensateSettlement returns funds moved by a settlement whose transaction failed to commit.
func (service *Service) compensateSettlement(ctx context.Context, caller Principal, receipt Receipt, cause error) error {
	refundContext := context.WithoutCancel(ctx)
	refundError := service.tokens.Transfer(refundContext, service.roles.Register, receipt.Purchaser(), receipt.TotalPrice())
	service.logOperation(refundContext, OperationLog{
		Operation: operationCompensate,
		Caller:    caller,
		ReceiptID: receipt.ReceiptID(),
		Amount:    receipt.TotalPrice(),
		Error:     refundError,
	})
	if refundError != nil {
		return errors.Join(cause, WrapError(errorOperationService, errorSubjectReceipt, errorCodeCompensate, refundError))
	}
	return cause
}

func (service *Service) requireManager(caller Principal) error {
	if caller.IsZero() || caller != service.roles.Manager {
		return fmt.Errorf("%w: manager role required", ErrUnauthorized)
	}
	return nil
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
