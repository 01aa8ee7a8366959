package register

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Principal identifies a caller, a purchaser or a settlement account.
type Principal struct {
	value string
}

// ItemID is an opaque catalog key compared by exact equality.
type ItemID struct {
	value string
}

// Price is a non-negative unit price.
type Price int64

// Amount is a non-negative settlement-token amount.
type Amount int64

// ReceiptID identifies a receipt. Values start at 1 and are never reused.
type ReceiptID int64

// ReceiptStatus describes the receipt lifecycle.
type ReceiptStatus string

const (
	ReceiptStatusOpen      ReceiptStatus = "open"
	ReceiptStatusFinalized ReceiptStatus = "finalized"
)

// NewPrincipal validates and normalizes an identity.
func NewPrincipal(raw string) (Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Principal{}, fmt.Errorf("%w: empty value", ErrInvalidPrincipal)
	}
	return Principal{value: trimmed}, nil
}

// String returns the normalized identity.
func (principal Principal) String() string {
	return principal.value
}

// IsZero reports whether the principal was never initialized.
func (principal Principal) IsZero() bool {
	return principal.value == ""
}

// NewItemID validates an item key. Keys are kept verbatim.
func NewItemID(raw string) (ItemID, error) {
	if strings.TrimSpace(raw) == "" {
		return ItemID{}, fmt.Errorf("%w: empty value", ErrInvalidItemID)
	}
	return ItemID{value: raw}, nil
}

// String returns the item key.
func (itemID ItemID) String() string {
	return itemID.value
}

// NewPrice validates a unit price.
func NewPrice(raw int64) (Price, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidPrice)
	}
	return Price(raw), nil
}

// Int64 returns the raw price.
func (price Price) Int64() int64 {
	return int64(price)
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

// Add returns amount+price, rejecting int64 overflow.
func (amount Amount) Add(price Price) (Amount, error) {
	if price.Int64() > math.MaxInt64-amount.Int64() {
		return 0, fmt.Errorf("%w: total exceeds %d", ErrInvalidAmount, int64(math.MaxInt64))
	}
	return Amount(amount.Int64() + price.Int64()), nil
}

// NewReceiptID validates a receipt identifier.
func NewReceiptID(raw int64) (ReceiptID, error) {
	if raw < FirstReceiptID {
		return 0, fmt.Errorf("%w: must be >= %d", ErrInvalidReceiptID, FirstReceiptID)
	}
	return ReceiptID(raw), nil
}

// Int64 returns the raw identifier.
func (receiptID ReceiptID) Int64() int64 {
	return int64(receiptID)
}

// ParseReceiptStatus validates a stored status value.
func ParseReceiptStatus(raw string) (ReceiptStatus, error) {
	switch ReceiptStatus(strings.TrimSpace(raw)) {
	case ReceiptStatusOpen:
		return ReceiptStatusOpen, nil
	case ReceiptStatusFinalized:
		return ReceiptStatusFinalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReceiptStatus, raw)
	}
}

// String returns the status name.
func (status ReceiptStatus) String() string {
	return string(status)
}

// CatalogEntry is a priced catalog item.
type CatalogEntry struct {
	itemID ItemID
	price  Price
}

// NewCatalogEntry validates a catalog entry.
func NewCatalogEntry(itemID ItemID, price Price) (CatalogEntry, error) {
	if itemID.value == "" {
		return CatalogEntry{}, fmt.Errorf("%w: empty value", ErrInvalidItemID)
	}
	if price < 0 {
		return CatalogEntry{}, fmt.Errorf("%w: must not be negative", ErrInvalidPrice)
	}
	return CatalogEntry{itemID: itemID, price: price}, nil
}

// ItemID returns the catalog key.
func (entry CatalogEntry) ItemID() ItemID {
	return entry.itemID
}

// Price returns the unit price.
func (entry CatalogEntry) Price() Price {
	return entry.price
}

// Receipt is a per-purchase record accumulating a running total until finalized.
type Receipt struct {
	receiptID ReceiptID
	purchaser Principal
	total     Amount
	finished  bool
}

// NewReceipt validates a receipt record.
func NewReceipt(receiptID ReceiptID, purchaser Principal, total Amount, finished bool) (Receipt, error) {
	if receiptID < ReceiptID(FirstReceiptID) {
		return Receipt{}, fmt.Errorf("%w: must be >= %d", ErrInvalidReceiptID, FirstReceiptID)
	}
	if purchaser.IsZero() {
		return Receipt{}, fmt.Errorf("%w: purchaser is required", ErrInvalidPrincipal)
	}
	if total < 0 {
		return Receipt{}, fmt.Errorf("%w: total must not be negative", ErrInvalidAmount)
	}
	return Receipt{receiptID: receiptID, purchaser: purchaser, total: total, finished: finished}, nil
}

// ReceiptID returns the identifier.
func (receipt Receipt) ReceiptID() ReceiptID {
	return receipt.receiptID
}

// Purchaser returns the identity allowed to ring up items.
func (receipt Receipt) Purchaser() Principal {
	return receipt.purchaser
}

// TotalPrice returns the accumulated total.
func (receipt Receipt) TotalPrice() Amount {
	return receipt.total
}

// Finished reports whether the receipt has been finalized and settled.
func (receipt Receipt) Finished() bool {
	return receipt.finished
}

// Status maps the finished flag onto the lifecycle state.
func (receipt Receipt) Status() ReceiptStatus {
	if receipt.finished {
		return ReceiptStatusFinalized
	}
	return ReceiptStatusOpen
}

// ReceiptCreated is emitted once per NewReceipt call.
type ReceiptCreated struct {
	Purchaser      Principal
	ReceiptID      ReceiptID
	CreatedUnixUTC int64
}

// Roles fixes the privileged identities for the lifetime of a Service.
type Roles struct {
	// Manager may edit the catalog, finalize receipts and withdraw the register balance.
	Manager Principal
	// Register is the settlement account credited by finalized receipts.
	Register Principal
}

// Validate ensures both identities are set.
func (roles Roles) Validate() error {
	if roles.Manager.IsZero() {
		return fmt.Errorf("%w: manager identity is required", ErrInvalidServiceConfig)
	}
	if roles.Register.IsZero() {
		return fmt.Errorf("%w: register account is required", ErrInvalidServiceConfig)
	}
	return nil
}

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	UpsertItem(ctx context.Context, entry CatalogEntry) error
	GetItemPrice(ctx context.Context, itemID ItemID) (Price, bool, error)
	NextReceiptID(ctx context.Context) (ReceiptID, error)
	CreateReceipt(ctx context.Context, receipt Receipt) error
	GetReceipt(ctx context.Context, receiptID ReceiptID) (Receipt, error)
	UpdateReceiptTotal(ctx context.Context, receiptID ReceiptID, from, to Amount) error
	MarkReceiptFinished(ctx context.Context, receiptID ReceiptID) error
	RecordReceiptCreated(ctx context.Context, event ReceiptCreated) error
	ListReceiptEvents(ctx context.Context, afterReceiptID int64, limit int) ([]ReceiptCreated, error)
}

// TokenService is the settlement-token contract consumed by Service.
type TokenService interface {
	// TransferFrom moves amount from one account to another on behalf of spender,
	// consuming an allowance previously granted by from.
	TransferFrom(ctx context.Context, spender Principal, from Principal, to Principal, amount Amount) error
	// Transfer moves amount out of an account the caller controls.
	Transfer(ctx context.Context, from Principal, to Principal, amount Amount) error
	BalanceOf(ctx context.Context, account Principal) (Amount, error)
}
