package register

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recorderLogger struct {
	mu      sync.Mutex
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.entries = append(logger.entries, entry)
}

func TestServiceLogsAddItemOperation(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	service := mustNewService(test, newStubStore(test), newStubTokens(test), WithOperationLogger(logger))
	item := mustAddItem(test, service, "apple", 3)

	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Operation != operationAddItem || entry.ItemID != item || entry.Amount != 3 || entry.Caller != mustPrincipal(test, managerValue) {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.Error != nil || entry.Status != operationStatusOK {
		test.Fatalf("expected successful log entry, got %+v", entry)
	}
}

func TestServiceLogsRejectedOperations(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	service := mustNewService(test, newStubStore(test), newStubTokens(test), WithOperationLogger(logger))
	stranger := mustPrincipal(test, strangerValue)

	_ = service.AddItem(context.Background(), stranger, mustItemID(test, "apple"), 3)
	_, _ = service.FinishReceipt(context.Background(), stranger, 1)

	if len(logger.entries) != 2 {
		test.Fatalf("expected two log entries, got %d", len(logger.entries))
	}
	for _, entry := range logger.entries {
		if entry.Status != operationStatusError || !errors.Is(entry.Error, ErrUnauthorized) {
			test.Fatalf("expected unauthorized error entry, got %+v", entry)
		}
	}
}

func TestServiceLogsSettlementLifecycle(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	store := newStubStore(test)
	tokens := newStubTokens(test)
	service := mustNewService(test, store, tokens, WithOperationLogger(logger))
	purchaser := mustPrincipal(test, purchaserValue)
	tokens.fund(purchaser, 10)
	tokens.approve(purchaser, mustPrincipal(test, registerValue), 10)
	item := mustAddItem(test, service, "apple", 3)
	receiptID := mustOpenReceipt(test, service, purchaser)
	mustRingUp(test, service, purchaser, receiptID, item)
	if _, err := service.FinishReceipt(context.Background(), mustPrincipal(test, managerValue), receiptID); err != nil {
		test.Fatalf("finish receipt: %v", err)
	}

	wantOperations := []string{operationAddItem, operationNewReceipt, operationRingUpItem, operationFinishReceipt}
	if len(logger.entries) != len(wantOperations) {
		test.Fatalf("expected %d log entries, got %d", len(wantOperations), len(logger.entries))
	}
	for index, operation := range wantOperations {
		if logger.entries[index].Operation != operation {
			test.Fatalf("entry %d: expected %s, got %s", index, operation, logger.entries[index].Operation)
		}
	}
	finish := logger.entries[3]
	if finish.ReceiptID != receiptID || finish.Amount != 3 || finish.Status != operationStatusOK {
		test.Fatalf("unexpected finish entry: %+v", finish)
	}
}

func TestServiceLogsCompensation(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	store := newStubStore(test)
	tokens := newStubTokens(test)
	service := mustNewService(test, store, tokens, WithOperationLogger(logger))
	purchaser := mustPrincipal(test, purchaserValue)
	tokens.fund(purchaser, 10)
	tokens.approve(purchaser, mustPrincipal(test, registerValue), 10)
	item := mustAddItem(test, service, "apple", 3)
	receiptID := mustOpenReceipt(test, service, purchaser)
	mustRingUp(test, service, purchaser, receiptID, item)
	store.commitError = errCommitFailure

	_, _ = service.FinishReceipt(context.Background(), mustPrincipal(test, managerValue), receiptID)

	last := logger.entries[len(logger.entries)-1]
	compensation := logger.entries[len(logger.entries)-2]
	if compensation.Operation != operationCompensate || compensation.Status != operationStatusOK {
		test.Fatalf("expected successful compensation entry, got %+v", compensation)
	}
	if last.Operation != operationFinishReceipt || last.Status != operationStatusError {
		test.Fatalf("expected failed finish entry, got %+v", last)
	}
}
