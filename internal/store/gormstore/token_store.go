package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	errorSubjectBalance   = "balance"
	errorSubjectAllowance = "allowance"
	errorSubjectTransfer  = "transfer"
	errorSubjectSupply    = "supply"
	errorCodeSet          = "set"
	errorCodeSum          = "sum"
)

// TokenStore implements token.Store using GORM. Stores built on the same handle as a
// register Store join its open transaction.
type TokenStore struct {
	root *gorm.DB
	db   *gorm.DB
}

// NewTokenStore returns a TokenStore backed by gorm.DB.
func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{root: db, db: db}
}

// WithTx executes fn within a transaction, joining one already open on the same handle.
func (store *TokenStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore token.Store) error) error {
	return runInTransaction(ctx, store.root, store.db, func(ctx context.Context, transaction *gorm.DB) error {
		return fn(ctx, &TokenStore{root: store.root, db: transaction})
	})
}

func (store *TokenStore) GetBalance(ctx context.Context, account token.Account) (token.Amount, error) {
	var model TokenBalance
	err := store.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ?", account.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapTokenStoreError(errorSubjectBalance, errorCodeGet, err)
	}
	amount, err := token.NewAmount(model.Amount)
	if err != nil {
		return 0, wrapTokenStoreError(errorSubjectBalance, errorCodeInvalid, err)
	}
	return amount, nil
}

func (store *TokenStore) SetBalance(ctx context.Context, account token.Account, amount token.Amount) error {
	model := TokenBalance{Account: account.String(), Amount: amount.Int64(), UpdatedAt: time.Now().UTC()}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return wrapTokenStoreError(errorSubjectBalance, errorCodeSet, err)
	}
	return nil
}

func (store *TokenStore) GetAllowance(ctx context.Context, owner token.Account, spender token.Account) (token.Amount, error) {
	var model TokenAllowance
	err := store.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND spender = ?", owner.String(), spender.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapTokenStoreError(errorSubjectAllowance, errorCodeGet, err)
	}
	amount, err := token.NewAmount(model.Amount)
	if err != nil {
		return 0, wrapTokenStoreError(errorSubjectAllowance, errorCodeInvalid, err)
	}
	return amount, nil
}

func (store *TokenStore) SetAllowance(ctx context.Context, owner token.Account, spender token.Account, amount token.Amount) error {
	model := TokenAllowance{Owner: owner.String(), Spender: spender.String(), Amount: amount.Int64(), UpdatedAt: time.Now().UTC()}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return wrapTokenStoreError(errorSubjectAllowance, errorCodeSet, err)
	}
	return nil
}

func (store *TokenStore) MintedSupply(ctx context.Context) (token.Amount, bool, error) {
	var sum struct {
		Records int64
		Total   int64
	}
	err := store.db.WithContext(ctx).
		Model(&TokenTransfer{}).
		Select("count(*) as records, coalesce(sum(amount),0) as total").
		Where("kind = ?", string(token.TransferKindMint)).
		Scan(&sum).Error
	if err != nil {
		return 0, false, wrapTokenStoreError(errorSubjectSupply, errorCodeSum, err)
	}
	supply, err := token.NewAmount(sum.Total)
	if err != nil {
		return 0, false, wrapTokenStoreError(errorSubjectSupply, errorCodeInvalid, err)
	}
	return supply, sum.Records > 0, nil
}

func (store *TokenStore) RecordTransfer(ctx context.Context, record token.TransferRecord) error {
	model := TokenTransfer{
		TransferID:  record.TransferID,
		Kind:        string(record.Kind),
		Spender:     optionalAccount(record.Spender),
		FromAccount: optionalAccount(record.From),
		ToAccount:   record.To.String(),
		Amount:      record.Amount.Int64(),
		CreatedAt:   time.Unix(record.CreatedUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if err != nil {
		return wrapTokenStoreError(errorSubjectTransfer, errorCodeCreate, err)
	}
	return nil
}

func (store *TokenStore) ListTransfers(ctx context.Context, account token.Account, limit int) ([]token.TransferRecord, error) {
	var rows []TokenTransfer
	err := store.db.WithContext(ctx).
		Where("from_account = ? OR to_account = ? OR spender = ?", account.String(), account.String(), account.String()).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeList, err)
	}
	records := make([]token.TransferRecord, 0, len(rows))
	for _, row := range rows {
		record, err := mapTransfer(row)
		if err != nil {
			return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeInvalid, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func mapTransfer(row TokenTransfer) (token.TransferRecord, error) {
	kind, err := token.ParseTransferKind(row.Kind)
	if err != nil {
		return token.TransferRecord{}, err
	}
	spender, err := parseOptionalAccount(row.Spender)
	if err != nil {
		return token.TransferRecord{}, err
	}
	from, err := parseOptionalAccount(row.FromAccount)
	if err != nil {
		return token.TransferRecord{}, err
	}
	to, err := token.NewAccount(row.ToAccount)
	if err != nil {
		return token.TransferRecord{}, err
	}
	amount, err := token.NewAmount(row.Amount)
	if err != nil {
		return token.TransferRecord{}, err
	}
	return token.TransferRecord{
		TransferID:     row.TransferID,
		Kind:           kind,
		Spender:        spender,
		From:           from,
		To:             to,
		Amount:         amount,
		CreatedUnixUTC: row.CreatedAt.Unix(),
	}, nil
}

func optionalAccount(account token.Account) *string {
	if account.IsZero() {
		return nil
	}
	value := account.String()
	return &value
}

func parseOptionalAccount(value *string) (token.Account, error) {
	if value == nil {
		return token.Account{}, nil
	}
	return token.NewAccount(*value)
}

func wrapTokenStoreError(subject string, code string, err error) error {
	return token.WrapError(errorOperationStore, subject, code, err)
}
