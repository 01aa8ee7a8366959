package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogItem mirrors the catalog_items table.
type CatalogItem struct {
	ItemID    string    `gorm:"primaryKey"`
	Price     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// Receipt mirrors the receipts table.
type Receipt struct {
	ReceiptID  int64     `gorm:"primaryKey;autoIncrement:false"`
	Purchaser  string    `gorm:"not null;index:idx_receipts_purchaser"`
	TotalPrice int64     `gorm:"not null"`
	Finished   bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Receipt) TableName() string { return "receipts" }

// Sequence mirrors the sequences table of named monotonic counters.
type Sequence struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (Sequence) TableName() string { return "sequences" }

// ReceiptEventPayload is the JSON body of a receipt_events row.
type ReceiptEventPayload struct {
	Purchaser      string `json:"purchaser"`
	ReceiptID      int64  `json:"receiptId"`
	CreatedUnixUTC int64  `json:"createdUnixUTC"`
}

// ReceiptEvent mirrors the receipt_events outbox table.
type ReceiptEvent struct {
	EventID   string                                  `gorm:"primaryKey;size:36"`
	ReceiptID int64                                   `gorm:"not null;uniqueIndex:uniq_receipt_events_receipt"`
	Payload   datatypes.JSONType[ReceiptEventPayload] `gorm:"not null"`
	CreatedAt time.Time                               `gorm:"not null"`
}

func (ReceiptEvent) TableName() string { return "receipt_events" }

func (event *ReceiptEvent) BeforeCreate(tx *gorm.DB) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	return nil
}

// TokenBalance mirrors the token_balances table.
type TokenBalance struct {
	Account   string    `gorm:"primaryKey"`
	Amount    int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TokenBalance) TableName() string { return "token_balances" }

// TokenAllowance mirrors the token_allowances table.
type TokenAllowance struct {
	Owner     string    `gorm:"primaryKey"`
	Spender   string    `gorm:"primaryKey"`
	Amount    int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TokenAllowance) TableName() string { return "token_allowances" }

// TokenTransfer mirrors the token_transfers journal.
type TokenTransfer struct {
	TransferID  string    `gorm:"primaryKey;size:64"`
	Kind        string    `gorm:"not null;index:idx_token_transfers_kind"`
	Spender     *string   `gorm:"index:idx_token_transfers_spender"`
	FromAccount *string   `gorm:"index:idx_token_transfers_from"`
	ToAccount   string    `gorm:"not null;index:idx_token_transfers_to"`
	Amount      int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index:idx_token_transfers_created"`
}

func (TokenTransfer) TableName() string { return "token_transfers" }

func (transfer *TokenTransfer) BeforeCreate(tx *gorm.DB) error {
	if transfer.TransferID == "" {
		transfer.TransferID = uuid.NewString()
	}
	return nil
}

// Models lists every table managed by this package in migration order.
func Models() []interface{} {
	return []interface{}{
		&CatalogItem{},
		&Receipt{},
		&Sequence{},
		&ReceiptEvent{},
		&TokenBalance{},
		&TokenAllowance{},
		&TokenTransfer{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
