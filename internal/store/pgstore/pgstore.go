package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	receiptSequenceName          = "receipt_id"
	constraintReceiptPrimary     = "receipts_pkey"
	constraintReceiptEventUnique = "uniq_receipt_events_receipt"
	pgUniqueViolationCode        = "23505"
	errorOperationStore          = "store"
	errorSubjectCatalog          = "catalog"
	errorSubjectReceipt          = "receipt"
	errorSubjectReceiptEvent     = "receipt_event"
	errorSubjectSchema           = "schema"
	errorSubjectSequence         = "sequence"
	errorSubjectTransaction      = "transaction"
	errorCodeApply               = "apply"
	errorCodeBegin               = "begin"
	errorCodeCommit              = "commit"
	errorCodeCreate              = "create"
	errorCodeDuplicate           = "duplicate"
	errorCodeFinish              = "finish"
	errorCodeGet                 = "get"
	errorCodeInvalid             = "invalid"
	errorCodeList                = "list"
	errorCodeNext                = "next"
	errorCodeUpdateTotal         = "update_total"
	errorCodeUpsert              = "upsert"

	sqlUpsertItem = `
		insert into catalog_items(item_id, price, updated_at) values ($1, $2, now())
		on conflict (item_id) do update set price = excluded.price, updated_at = now()
	`

	sqlSelectItemPrice = `select price from catalog_items where item_id = $1`

	sqlNextSequence = `
		insert into sequences(name, value) values ($1, $2)
		on conflict (name) do update set value = sequences.value + 1
		returning value
	`

	sqlInsertReceipt = `
		insert into receipts(receipt_id, purchaser, total_price, finished)
		values ($1, $2, $3, $4)
	`

	sqlSelectReceipt = `
		select receipt_id, purchaser, total_price, finished
		from receipts
		where receipt_id = $1
		for update
	`

	sqlUpdateReceiptTotal = `
		update receipts
		set total_price = $3, updated_at = now()
		where receipt_id = $1 and finished = false and total_price = $2
	`

	sqlFinishReceipt = `
		update receipts
		set finished = true, updated_at = now()
		where receipt_id = $1 and finished = false
	`

	sqlInsertReceiptEvent = `
		insert into receipt_events(receipt_id, payload, created_at)
		values ($1, $2::jsonb, to_timestamp($3))
	`

	sqlListReceiptEvents = `
		select payload::text
		from receipt_events
		where receipt_id > $1
		order by receipt_id asc
		limit $2
	`
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements register.Store using a pgx connection pool (autocommit).
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// New returns a Store backed by a pgx pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// ApplySchema creates the register and token tables when they do not exist.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeApply, err)
	}
	return nil
}

// WithTx executes fn within a transaction, joining one already open on the same pool.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore register.Store) error) error {
	if store.pool == nil {
		return fn(ctx, store)
	}
	return runInTransaction(ctx, store.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &Store{db: tx})
	})
}

type transactionKey struct{}

// transactionScope is carried in the context of a WithTx callback so that other stores
// built on the same pool join the open transaction instead of starting their own.
type transactionScope struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func runInTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if scope, ok := ctx.Value(transactionKey{}).(transactionScope); ok && scope.pool == pool {
		return fn(ctx, scope.tx)
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeBegin, err)
	}
	scopedContext := context.WithValue(ctx, transactionKey{}, transactionScope{pool: pool, tx: tx})
	if err := fn(scopedContext, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapStoreError(errorSubjectTransaction, errorCodeCommit, err)
	}
	return nil
}

func (store *Store) UpsertItem(ctx context.Context, entry register.CatalogEntry) error {
	if _, err := store.db.Exec(ctx, sqlUpsertItem, entry.ItemID().String(), entry.Price().Int64()); err != nil {
		return wrapStoreError(errorSubjectCatalog, errorCodeUpsert, err)
	}
	return nil
}

func (store *Store) GetItemPrice(ctx context.Context, itemID register.ItemID) (register.Price, bool, error) {
	var value int64
	err := store.db.QueryRow(ctx, sqlSelectItemPrice, itemID.String()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapStoreError(errorSubjectCatalog, errorCodeGet, err)
	}
	price, err := register.NewPrice(value)
	if err != nil {
		return 0, false, wrapStoreError(errorSubjectCatalog, errorCodeInvalid, err)
	}
	return price, true, nil
}

func (store *Store) NextReceiptID(ctx context.Context) (register.ReceiptID, error) {
	var value int64
	if err := store.db.QueryRow(ctx, sqlNextSequence, receiptSequenceName, register.FirstReceiptID).Scan(&value); err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeNext, err)
	}
	receiptID, err := register.NewReceiptID(value)
	if err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeInvalid, err)
	}
	return receiptID, nil
}

func (store *Store) CreateReceipt(ctx context.Context, receipt register.Receipt) error {
	_, err := store.db.Exec(ctx, sqlInsertReceipt,
		receipt.ReceiptID().Int64(),
		receipt.Purchaser().String(),
		receipt.TotalPrice().Int64(),
		receipt.Finished(),
	)
	if isUniqueViolation(err, constraintReceiptPrimary) {
		return wrapStoreError(errorSubjectReceipt, errorCodeDuplicate, register.ErrReceiptConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) GetReceipt(ctx context.Context, receiptID register.ReceiptID) (register.Receipt, error) {
	var (
		idValue        int64
		purchaserValue string
		totalValue     int64
		finished       bool
	)
	err := store.db.QueryRow(ctx, sqlSelectReceipt, receiptID.Int64()).Scan(&idValue, &purchaserValue, &totalValue, &finished)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeGet, register.ErrReceiptNotFound)
		}
		return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeGet, err)
	}
	receipt, err := mapReceipt(idValue, purchaserValue, totalValue, finished)
	if err != nil {
		return register.Receipt{}, wrapStoreError(errorSubjectReceipt, errorCodeInvalid, err)
	}
	return receipt, nil
}

func (store *Store) UpdateReceiptTotal(ctx context.Context, receiptID register.ReceiptID, from, to register.Amount) error {
	tag, err := store.db.Exec(ctx, sqlUpdateReceiptTotal, receiptID.Int64(), from.Int64(), to.Int64())
	if err != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeUpdateTotal, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectReceipt, errorCodeUpdateTotal, register.ErrReceiptConflict)
	}
	return nil
}

func (store *Store) MarkReceiptFinished(ctx context.Context, receiptID register.ReceiptID) error {
	tag, err := store.db.Exec(ctx, sqlFinishReceipt, receiptID.Int64())
	if err != nil {
		return wrapStoreError(errorSubjectReceipt, errorCodeFinish, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapStoreError(errorSubjectReceipt, errorCodeFinish, register.ErrReceiptFinalized)
	}
	return nil
}

func (store *Store) RecordReceiptCreated(ctx context.Context, event register.ReceiptCreated) error {
	payload, err := encodeReceiptEvent(event)
	if err != nil {
		return wrapStoreError(errorSubjectReceiptEvent, errorCodeInvalid, err)
	}
	_, err = store.db.Exec(ctx, sqlInsertReceiptEvent, event.ReceiptID.Int64(), payload, event.CreatedUnixUTC)
	if isUniqueViolation(err, constraintReceiptEventUnique) {
		return wrapStoreError(errorSubjectReceiptEvent, errorCodeDuplicate, register.ErrDuplicateReceiptEvent)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReceiptEvent, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) ListReceiptEvents(ctx context.Context, afterReceiptID int64, limit int) ([]register.ReceiptCreated, error) {
	rows, err := store.db.Query(ctx, sqlListReceiptEvents, afterReceiptID, limit)
	if err != nil {
		return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeList, err)
	}
	defer rows.Close()
	events := make([]register.ReceiptCreated, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeList, err)
		}
		event, err := decodeReceiptEvent(payload)
		if err != nil {
			return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeInvalid, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(errorSubjectReceiptEvent, errorCodeList, err)
	}
	return events, nil
}

type receiptEventPayload struct {
	Purchaser      string `json:"purchaser"`
	ReceiptID      int64  `json:"receiptId"`
	CreatedUnixUTC int64  `json:"createdUnixUTC"`
}

func encodeReceiptEvent(event register.ReceiptCreated) (string, error) {
	payload, err := json.Marshal(receiptEventPayload{
		Purchaser:      event.Purchaser.String(),
		ReceiptID:      event.ReceiptID.Int64(),
		CreatedUnixUTC: event.CreatedUnixUTC,
	})
	return string(payload), err
}

func decodeReceiptEvent(raw string) (register.ReceiptCreated, error) {
	var payload receiptEventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return register.ReceiptCreated{}, err
	}
	receiptID, err := register.NewReceiptID(payload.ReceiptID)
	if err != nil {
		return register.ReceiptCreated{}, err
	}
	purchaser, err := register.NewPrincipal(payload.Purchaser)
	if err != nil {
		return register.ReceiptCreated{}, err
	}
	return register.ReceiptCreated{Purchaser: purchaser, ReceiptID: receiptID, CreatedUnixUTC: payload.CreatedUnixUTC}, nil
}

func mapReceipt(idValue int64, purchaserValue string, totalValue int64, finished bool) (register.Receipt, error) {
	receiptID, err := register.NewReceiptID(idValue)
	if err != nil {
		return register.Receipt{}, err
	}
	purchaser, err := register.NewPrincipal(purchaserValue)
	if err != nil {
		return register.Receipt{}, err
	}
	total, err := register.NewAmount(totalValue)
	if err != nil {
		return register.Receipt{}, err
	}
	return register.NewReceipt(receiptID, purchaser, total, finished)
}

func wrapStoreError(subject string, code string, err error) error {
	return register.WrapError(errorOperationStore, subject, code, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraint
	}
	return false
}
