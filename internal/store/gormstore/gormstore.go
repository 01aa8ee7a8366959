package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	receiptSequenceName      = "receipt_id"
	pgUniqueViolationCode    = "23505"
	sqliteConstraintCode     = 19
	errorOperationStore      = "store"
	errorSubjectCatalog      = "catalog"
	errorSubjectReceipt      = "receipt"
	errorSubjectSequence     = "sequence"
	errorSubjectReceiptEvent = "receipt_event"
	errorCodeCreate          = "create"
	errorCodeDuplicate       = "duplicate"
	errorCodeFinish          = "finish"
	errorCodeGet             = "get"
	errorCodeInvalid         = "invalid"
	errorCodeList            = "list"
	errorCodeNext            = "next"
	errorCodeUpdateTotal     = "update_total"
	errorCodeUpsert          = "upsert"
)

type transactionKey struct{}

// transactionScope is carried in the context of a WithTx callback so that other stores
// built on the same handle join the open transaction instead of starting their own.
type transactionScope struct {
	root        *gorm.DB
	transaction *gorm.DB
}

// Store implements register.Store using GORM.
type Store struct {
	root *gorm.DB
	db   *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{root: db, db: db}
}

// WithTx executes fn within a transaction, joining one already open on the same handle.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore register.Store) error) error {
	return runInTransaction(ctx, store.root, store.db, func(ctx context.Context, transaction *gorm.DB) error {
		return fn(ctx, &Store{root: store.root, db: transaction})
	})
}

func runInTransaction(ctx context.Context, root *gorm.DB, db *gorm.DB, fn func(ctx context.Context, transaction *gorm.DB) error) error {
	if scope, ok := ctx.Value(transactionKey{}).(transactionScope); ok && scope.root == root {
		return fn(ctx, scope.transaction)
	}
	return db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		scopedContext := context.WithValue(ctx, transactionKey{}, transactionScope{root: root, transaction: transaction})
		return fn(scopedContext, transaction)
	})
}

func (store *Store) UpsertItem(ctx context.Context, entry register.CatalogEntry) error {
	model := CatalogItem{
		ItemID:    entry.ItemID().String(),
		Price:     entry.Price().Int64(),
		UpdatedAt: time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return wrapStoreError(errorSubjectCatalog, errorCodeUpsert, err)
	}
	return nil
}

func (store *Store) GetItemPrice(ctx context.Context, itemID register.ItemID) (register.Price, bool, error) {
	var model CatalogItem
	err := store.db.WithContext(ctx).Where("item_id = ?", itemID.String()).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapStoreError(errorSubjectCatalog, errorCodeGet, err)
	}
	price, err := register.NewPrice(model.Price)
	if err != nil {
		return 0, false, wrapStoreError(errorSubjectCatalog, errorCodeInvalid, err)
	}
	return price, true, nil
}

func (store *Store) NextReceiptID(ctx context.Context) (register.ReceiptID, error) {
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value": gorm.Expr("sequences.value + 1"),
			}),
		}).
		Create(&Sequence{Name: receiptSequenceName, Value: register.FirstReceiptID}).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeNext, err)
	}
	var sequence Sequence
	if err := store.db.WithContext(ctx).Where("name = ?", receiptSequenceName).Take(&sequence).Error; err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeNext, err)
	}
	receiptID, err := register.NewReceiptID(sequence.Value)
	if err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeInvalid, err)
	}
	return receiptID, nil
}

func (store *Store) CreateReceipt(ctx context.Context, receipt register.Receipt) error {
	now := time.Now().UTC()
	model := Receipt{
		ReceiptID:  receipt.ReceiptID().Int64(),
		Purchaser:  receipt.Purchaser().String(),
		TotalPrice: receipt.TotalPrice().Int64(),
		Finished:   receipt.Finished(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectReceipt, errorCodeDuplicate, register.ErrReceiptConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) GetReceipt(ctx context.Context, receiptID register.ReceiptID) (register.Receipt, error) {
	var model Receipt
	err := store.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("receipt_id = ?", receiptID.Int64()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeGet, register.ErrReceiptNotFound)
		}
		return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeGet, err)
	}
	receipt, err := mapReceipt(model)
	if err != nil {
		return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeInvalid, err)
	}
	return receipt, nil
}

func (store *Store) UpdateReceiptTotal(ctx context.Context, receiptID register.ReceiptID, from, to register.Amount) error {
	result := store.db.WithContext(ctx).
		Model(&Receipt{}).
		Where("receipt_id = ? AND finished = ? AND total_price = ?", receiptID.Int64(), false, from.Int64()).
		Updates(map[string]interface{}{"total_price": to.Int64(), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeUpdateTotal, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReceipt, errorCodeUpdateTotal, register.ErrReceiptConflict)
	}
	return nil
}

func (store *Store) MarkReceiptFinished(ctx context.Context, receiptID register.ReceiptID) error {
	result := store.db.WithContext(ctx).
		Model(&Receipt{}).
		Where("receipt_id = ? AND finished = ?", receiptID.Int64(), false).
		Updates(map[string]interface{}{"finished": true, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeFinish, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReceipt, errorCodeFinish, register.ErrReceiptFinalized)
	}
	return nil
}

func (store *Store) RecordReceiptCreated(ctx context.Context, event register.ReceiptCreated) error {
	model := ReceiptEvent{
		ReceiptID: event.ReceiptID.Int64(),
		Payload: datatypes.NewJSONType(ReceiptEventPayload{
			Purchaser:      event.Purchaser.String(),
			ReceiptID:      event.ReceiptID.Int64(),
			CreatedUnixUTC: event.CreatedUnixUTC,
		}),
		CreatedAt: time.Unix(event.CreatedUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return wrapStoreError(errorSubjectReceiptEvent, errorCodeDuplicate, register.ErrDuplicateReceiptEvent)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReceiptEvent, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) ListReceiptEvents(ctx context.Context, afterReceiptID int64, limit int) ([]register.ReceiptCreated, error) {
	var rows []ReceiptEvent
	err := store.db.WithContext(ctx).
		Where("receipt_id > ?", afterReceiptID).
		Order("receipt_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeList, err)
	}
	events := make([]register.ReceiptCreated, 0, len(rows))
	for _, row := range rows {
		event, err := mapReceiptEvent(row.Payload.Data())
		if err != nil {
			return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeInvalid, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func mapReceipt(model Receipt) (register.Receipt, error) {
	receiptID, err := register.NewReceiptID(model.ReceiptID)
	if err != nil {
		return register.Receipt{}, err
	}
	purchaser, err := register.NewPrincipal(model.Purchaser)
	if err != nil {
		return register.Receipt{}, err
	}
	total, err := register.NewAmount(model.TotalPrice)
	if err != nil {
		return register.Receipt{}, err
	}
	return register.NewReceipt(receiptID, purchaser, total, model.Finished)
}

func mapReceiptEvent(payload ReceiptEventPayload) (register.ReceiptCreated, error) {
	receiptID, err := register.NewReceiptID(payload.ReceiptID)
	if err != nil {
		return register.ReceiptCreated{}, err
	}
	purchaser, err := register.NewPrincipal(payload.Purchaser)
	if err != nil {
		return register.ReceiptCreated{}, err
	}
	return register.ReceiptCreated{
		Purchaser:      purchaser,
		ReceiptID:      receiptID,
		CreatedUnixUTC: payload.CreatedUnixUTC,
	}, nil
}

func wrapStoreError(subject string, code string, err error) error {
	return register.WrapError(errorOperationStore, subject, code, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
