package token

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Ledger is a fungible balance ledger with allowances, in the shape of an EIP-20 token.
// Isolation between concurrent movements is provided by Store transactions.
type Ledger struct {
	store    Store
	metadata Metadata
	nowFn    func() int64
	newID    func() string
	logger   OperationLogger
}

// NewLedger wires a Ledger.
func NewLedger(store Store, metadata Metadata, now func() int64, options ...LedgerOption) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidLedgerConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidLedgerConfig)
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	ledger := &Ledger{store: store, metadata: metadata, nowFn: now, newID: uuid.NewString}
	for _, option := range options {
		if option != nil {
			option(ledger)
		}
	}
	return ledger, nil
}

// Metadata returns the token name, symbol and decimals.
func (ledger *Ledger) Metadata() Metadata {
	return ledger.metadata
}

// Mint credits the initial supply to treasury. A ledger is minted at most once.
func (ledger *Ledger) Mint(ctx context.Context, treasury Account, amount Amount) (TransferRecord, error) {
	record := TransferRecord{Kind: TransferKindMint, To: treasury, Amount: amount}
	operationError := validateMovement(Account{}, treasury, amount, false)
	if operationError == nil {
		operationError = ledger.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			_, minted, err := transactionStore.MintedSupply(ctx)
			if err != nil {
				return err
			}
			if minted {
				return ErrSupplyAlreadyMinted
			}
			if err := transactionStore.SetBalance(ctx, treasury, amount); err != nil {
				return err
			}
			record = ledger.stamp(record)
			return transactionStore.RecordTransfer(ctx, record)
		})
	}
	ledger.logOperation(ctx, operationMint, record, operationError)
	if operationError != nil {
		return TransferRecord{}, operationError
	}
	return record, nil
}

// TotalSupply returns the minted supply, or 0 before Mint.
func (ledger *Ledger) TotalSupply(ctx context.Context) (Amount, error) {
	supply, _, err := ledger.store.MintedSupply(ctx)
	return supply, err
}

// BalanceOf returns the balance held by account; unknown accounts hold 0.
func (ledger *Ledger) BalanceOf(ctx context.Context, account Account) (Amount, error) {
	if account.IsZero() {
		return 0, fmt.Errorf("%w: account is required", ErrInvalidAccount)
	}
	return ledger.store.GetBalance(ctx, account)
}

// Allowance returns how much spender may still move out of owner's balance.
func (ledger *Ledger) Allowance(ctx context.Context, owner Account, spender Account) (Amount, error) {
	if owner.IsZero() || spender.IsZero() {
		return 0, fmt.Errorf("%w: owner and spender are required", ErrInvalidAccount)
	}
	return ledger.store.GetAllowance(ctx, owner, spender)
}

// Approve sets the allowance of spender over owner's balance, replacing any previous value.
func (ledger *Ledger) Approve(ctx context.Context, owner Account, spender Account, amount Amount) error {
	operationError := validateMovement(owner, spender, amount, true)
	if operationError == nil {
		operationError = ledger.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			return transactionStore.SetAllowance(ctx, owner, spender, amount)
		})
	}
	ledger.logOperation(ctx, operationApprove, TransferRecord{Spender: spender, From: owner, Amount: amount}, operationError)
	return operationError
}

// Transfer moves amount from one holder to another.
func (ledger *Ledger) Transfer(ctx context.Context, from Account, to Account, amount Amount) (TransferRecord, error) {
	record := TransferRecord{Kind: TransferKindTransfer, From: from, To: to, Amount: amount}
	operationError := validateMovement(from, to, amount, true)
	if operationError == nil {
		operationError = ledger.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if err := moveBalance(ctx, transactionStore, from, to, amount); err != nil {
				return err
			}
			record = ledger.stamp(record)
			return transactionStore.RecordTransfer(ctx, record)
		})
	}
	ledger.logOperation(ctx, operationTransfer, record, operationError)
	if operationError != nil {
		return TransferRecord{}, operationError
	}
	return record, nil
}

// TransferFrom moves amount out of from's balance on behalf of spender, consuming spender's allowance.
func (ledger *Ledger) TransferFrom(ctx context.Context, spender Account, from Account, to Account, amount Amount) (TransferRecord, error) {
	record := TransferRecord{Kind: TransferKindTransferFrom, Spender: spender, From: from, To: to, Amount: amount}
	operationError := validateMovement(from, to, amount, true)
	if operationError == nil && spender.IsZero() {
		operationError = fmt.Errorf("%w: spender is required", ErrInvalidAccount)
	}
	if operationError == nil {
		operationError = ledger.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			allowance, err := transactionStore.GetAllowance(ctx, from, spender)
			if err != nil {
				return err
			}
			if allowance < amount {
				return fmt.Errorf("%w: %s may move %d of %s, requested %d", ErrInsufficientAllowance, spender, allowance, from, amount)
			}
			if err := transactionStore.SetAllowance(ctx, from, spender, allowance-amount); err != nil {
				return err
			}
			if err := moveBalance(ctx, transactionStore, from, to, amount); err != nil {
				return err
			}
			record = ledger.stamp(record)
			return transactionStore.RecordTransfer(ctx, record)
		})
	}
	ledger.logOperation(ctx, operationTransferFrom, record, operationError)
	if operationError != nil {
		return TransferRecord{}, operationError
	}
	return record, nil
}

// Transfers returns the most recent journal records touching account, newest first.
func (ledger *Ledger) Transfers(ctx context.Context, account Account, limit int) ([]TransferRecord, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("%w: account is required", ErrInvalidAccount)
	}
	if limit <= 0 || limit > maxTransfersLimit {
		return nil, fmt.Errorf("%w: limit must be within 1..%d", ErrInvalidListLimit, maxTransfersLimit)
	}
	return ledger.store.ListTransfers(ctx, account, limit)
}

func moveBalance(ctx context.Context, store Store, from Account, to Account, amount Amount) error {
	fromBalance, err := store.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: %s holds %d, requested %d", ErrInsufficientBalance, from, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance, err := store.GetBalance(ctx, to)
	if err != nil {
		return err
	}
	credited, err := toBalance.add(amount)
	if err != nil {
		return err
	}
	if err := store.SetBalance(ctx, from, fromBalance-amount); err != nil {
		return err
	}
	return store.SetBalance(ctx, to, credited)
}

func validateMovement(from Account, to Account, amount Amount, requireFrom bool) error {
	if requireFrom && from.IsZero() {
		return fmt.Errorf("%w: source account is required", ErrInvalidAccount)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: destination account is required", ErrInvalidAccount)
	}
	if amount < 0 {
		return fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return nil
}

func (ledger *Ledger) stamp(record TransferRecord) TransferRecord {
	record.TransferID = ledger.newID()
	record.CreatedUnixUTC = ledger.nowFn()
	return record
}

func (ledger *Ledger) logOperation(ctx context.Context, operation string, record TransferRecord, operationError error) {
	if ledger.logger == nil {
		return
	}
	status := operationStatusOK
	if operationError != nil {
		status = operationStatusError
	}
	ledger.logger.LogTokenOperation(ctx, OperationLog{
		Operation:  operation,
		TransferID: record.TransferID,
		Spender:    record.Spender,
		From:       record.From,
		To:         record.To,
		Amount:     record.Amount,
		Status:     status,
		Error:      operationError,
	})
}
