package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	errorSubjectBalance   = "balance"
	errorSubjectAllowance = "allowance"
	errorSubjectTransfer  = "transfer"
	errorSubjectSupply    = "supply"
	errorCodeSet          = "set"
	errorCodeSum          = "sum"

	sqlSelectBalance = `select amount from token_balances where account = $1 for update`

	sqlUpsertBalance = `
		insert into token_balances(account, amount, updated_at) values ($1, $2, now())
		on conflict (account) do update set amount = excluded.amount, updated_at = now()
	`

	sqlSelectAllowance = `select amount from token_allowances where owner = $1 and spender = $2 for update`

	sqlUpsertAllowance = `
		insert into token_allowances(owner, spender, amount, updated_at) values ($1, $2, $3, now())
		on conflict (owner, spender) do update set amount = excluded.amount, updated_at = now()
	`

	sqlMintedSupply = `select count(*), coalesce(sum(amount), 0) from token_transfers where kind = $1`

	sqlInsertTransfer = `
		insert into token_transfers(transfer_id, kind, spender, from_account, to_account, amount, created_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`

	sqlListTransfers = `
		select transfer_id, kind, spender, from_account, to_account, amount, created_at
		from token_transfers
		where from_account = $1 or to_account = $1 or spender = $1
		order by created_at desc
		limit $2
	`
)

// TokenStore implements token.Store using a pgx pool. Stores built on the same pool as a
// register Store join its open transaction, so receipt finalization and settlement commit together.
type TokenStore struct {
	pool *pgxpool.Pool
	db   querier
}

// NewTokenStore returns a TokenStore backed by a pgx pool.
func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool, db: pool}
}

// WithTx executes fn within a transaction, joining one already open on the same pool.
func (store *TokenStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore token.Store) error) error {
	if store.pool == nil {
		return fn(ctx, store)
	}
	return runInTransaction(ctx, store.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &TokenStore{db: tx})
	})
}

func (store *TokenStore) GetBalance(ctx context.Context, account token.Account) (token.Amount, error) {
	return store.selectAmount(ctx, errorSubjectBalance, sqlSelectBalance, account.String())
}

func (store *TokenStore) SetBalance(ctx context.Context, account token.Account, amount token.Amount) error {
	if _, err := store.db.Exec(ctx, sqlUpsertBalance, account.String(), amount.Int64()); err != nil {
		return wrapTokenStoreError(errorSubjectBalance, errorCodeSet, err)
	}
	return nil
}

func (store *TokenStore) GetAllowance(ctx context.Context, owner token.Account, spender token.Account) (token.Amount, error) {
	return store.selectAmount(ctx, errorSubjectAllowance, sqlSelectAllowance, owner.String(), spender.String())
}

func (store *TokenStore) SetAllowance(ctx context.Context, owner token.Account, spender token.Account, amount token.Amount) error {
	if _, err := store.db.Exec(ctx, sqlUpsertAllowance, owner.String(), spender.String(), amount.Int64()); err != nil {
		return wrapTokenStoreError(errorSubjectAllowance, errorCodeSet, err)
	}
	return nil
}

func (store *TokenStore) MintedSupply(ctx context.Context) (token.Amount, bool, error) {
	var (
		records int64
		total   int64
	)
	if err := store.db.QueryRow(ctx, sqlMintedSupply, string(token.TransferKindMint)).Scan(&records, &total); err != nil {
		return 0, false, wrapTokenStoreError(errorSubjectSupply, errorCodeSum, err)
	}
	supply, err := token.NewAmount(total)
	if err != nil {
		return 0, false, wrapTokenStoreError(errorSubjectSupply, errorCodeInvalid, err)
	}
	return supply, records > 0, nil
}

func (store *TokenStore) RecordTransfer(ctx context.Context, record token.TransferRecord) error {
	_, err := store.db.Exec(ctx, sqlInsertTransfer,
		record.TransferID,
		string(record.Kind),
		optionalAccount(record.Spender),
		optionalAccount(record.From),
		record.To.String(),
		record.Amount.Int64(),
		time.Unix(record.CreatedUnixUTC, 0).UTC(),
	)
	if err != nil {
		return wrapTokenStoreError(errorSubjectTransfer, errorCodeCreate, err)
	}
	return nil
}

func (store *TokenStore) ListTransfers(ctx context.Context, account token.Account, limit int) ([]token.TransferRecord, error) {
	rows, err := store.db.Query(ctx, sqlListTransfers, account.String(), limit)
	if err != nil {
		return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeList, err)
	}
	defer rows.Close()

	records := make([]token.TransferRecord, 0, limit)
	for rows.Next() {
		var (
			transferID, kind, to string
			spender, from        *string
			amount               int64
			createdAt            time.Time
		)
		if err := rows.Scan(&transferID, &kind, &spender, &from, &to, &amount, &createdAt); err != nil {
			return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeList, err)
		}
		record, err := mapTransfer(transferID, kind, spender, from, to, amount, createdAt)
		if err != nil {
			return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeInvalid, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTokenStoreError(errorSubjectTransfer, errorCodeList, err)
	}
	return records, nil
}

func (store *TokenStore) selectAmount(ctx context.Context, subject string, query string, args ...any) (token.Amount, error) {
	var value int64
	err := store.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapTokenStoreError(subject, errorCodeGet, err)
	}
	amount, err := token.NewAmount(value)
	if err != nil {
		return 0, wrapTokenStoreError(subject, errorCodeInvalid, err)
	}
	return amount, nil
}

func mapTransfer(transferID string, kindValue string, spenderValue *string, fromValue *string, toValue string, amountValue int64, createdAt time.Time) (token.TransferRecord, error) {
	kind, err := token.ParseTransferKind(kindValue)
	if err != nil {
		return token.TransferRecord{}, err
	}
	spender, err := parseOptionalAccount(spenderValue)
	if err != nil {
		return token.TransferRecord{}, err
	}
	from, err := parseOptionalAccount(fromValue)
	if err != nil {
		return token.TransferRecord{}, err
	}
	to, err := token.NewAccount(toValue)
	if err != nil {
		return token.TransferRecord{}, err
	}
	amount, err := token.NewAmount(amountValue)
	if err != nil {
		return token.TransferRecord{}, err
	}
	return token.TransferRecord{
		TransferID:     transferID,
		Kind:           kind,
		Spender:        spender,
		From:           from,
		To:             to,
		Amount:         amount,
		CreatedUnixUTC: createdAt.Unix(),
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
