package token

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Account identifies a token holder.
type Account struct {
	value string
}

// Amount is a non-negative number of base token units.
type Amount int64

// TransferKind classifies a journal record.
type TransferKind string

const (
	TransferKindMint         TransferKind = "mint"
	TransferKindTransfer     TransferKind = "transfer"
	TransferKindTransferFrom TransferKind = "transfer_from"
)

// NewAccount validates and normalizes a holder identity.
func NewAccount(raw string) (Account, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Account{}, fmt.Errorf("%w: empty value", ErrInvalidAccount)
	}
	return Account{value: trimmed}, nil
}

// String returns the normalized identity.
func (account Account) String() string {
	return account.value
}

// IsZero reports whether the account was never initialized.
func (account Account) IsZero() bool {
	return account.value == ""
}

// NewAmount validates a token amount.
func NewAmount(raw int64) (Amount, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return Amount(raw), nil
}

// Int64 returns the raw amount.
func (amount Amount) Int64() int64 {
	return int64(amount)
}

func (amount Amount) add(other Amount) (Amount, error) {
	if other > math.MaxInt64-amount {
		return 0, ErrBalanceOverflow
	}
	return amount + other, nil
}

// ParseTransferKind validates a stored kind value.
func ParseTransferKind(raw string) (TransferKind, error) {
	switch TransferKind(strings.TrimSpace(raw)) {
	case TransferKindMint:
		return TransferKindMint, nil
	case TransferKindTransfer:
		return TransferKindTransfer, nil
	case TransferKindTransferFrom:
		return TransferKindTransferFrom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransferKind, raw)
	}
}

// Metadata describes the token. Decimals only affect presentation.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals int32
}

// Validate ensures the metadata is presentable.
func (metadata Metadata) Validate() error {
	if strings.TrimSpace(metadata.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}
	if strings.TrimSpace(metadata.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidMetadata)
	}
	if metadata.Decimals < 0 || metadata.Decimals > 18 {
		return fmt.Errorf("%w: decimals must be within 0..18", ErrInvalidMetadata)
	}
	return nil
}

// DefaultMetadata returns the metadata of the register's settlement token.
func DefaultMetadata() Metadata {
	return Metadata{Name: DefaultName, Symbol: DefaultSymbol, Decimals: DefaultDecimals}
}

// TransferRecord is an immutable journal entry for one balance movement.
// Spender is set only for TransferKindTransferFrom; From is zero for mints.
type TransferRecord struct {
	TransferID     string
	Kind           TransferKind
	Spender        Account
	From           Account
	To             Account
	Amount         Amount
	CreatedUnixUTC int64
}

// Store is the persistence contract used by Ledger.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	GetBalance(ctx context.Context, account Account) (Amount, error)
	SetBalance(ctx context.Context, account Account, amount Amount) error
	GetAllowance(ctx context.Context, owner Account, spender Account) (Amount, error)
	SetAllowance(ctx context.Context, owner Account, spender Account, amount Amount) error
	MintedSupply(ctx context.Context) (Amount, bool, error)
	RecordTransfer(ctx context.Context, record TransferRecord) error
	ListTransfers(ctx context.Context, account Account, limit int) ([]TransferRecord, error)
}
