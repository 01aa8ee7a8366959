package token

import (
	"context"
	"sort"
	"sync"
	"testing"
)

const (
	treasuryValue = "treasury"
	aliceValue    = "alice"
	bobValue      = "bob"
	registerValue = "register"
	clockValue    = 1700000000
)

type allowanceKey struct {
	owner   Account
	spender Account
}

// stubStore is an in-memory Store. WithTx serializes transactions and restores a snapshot on failure.
type stubStore struct {
	transaction sync.Mutex
	mu          sync.Mutex

	balances   map[Account]Amount
	allowances map[allowanceKey]Amount
	transfers  []TransferRecord

	setBalanceError error
	recordError     error
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		balances:   make(map[Account]Amount),
		allowances: make(map[allowanceKey]Amount),
	}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	store.transaction.Lock()
	defer store.transaction.Unlock()

	store.mu.Lock()
	balances := make(map[Account]Amount, len(store.balances))
	for key, value := range store.balances {
		balances[key] = value
	}
	allowances := make(map[allowanceKey]Amount, len(store.allowances))
	for key, value := range store.allowances {
		allowances[key] = value
	}
	transfers := append([]TransferRecord(nil), store.transfers...)
	store.mu.Unlock()

	if err := fn(ctx, store); err != nil {
		store.mu.Lock()
		store.balances = balances
		store.allowances = allowances
		store.transfers = transfers
		store.mu.Unlock()
		return err
	}
	return nil
}

func (store *stubStore) GetBalance(ctx context.Context, account Account) (Amount, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.balances[account], nil
}

func (store *stubStore) SetBalance(ctx context.Context, account Account, amount Amount) error {
	if store.setBalanceError != nil {
		return store.setBalanceError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.balances[account] = amount
	return nil
}

func (store *stubStore) GetAllowance(ctx context.Context, owner Account, spender Account) (Amount, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.allowances[allowanceKey{owner: owner, spender: spender}], nil
}

func (store *stubStore) SetAllowance(ctx context.Context, owner Account, spender Account, amount Amount) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

func (store *stubStore) MintedSupply(ctx context.Context) (Amount, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var supply Amount
	minted := false
	for _, record := range store.transfers {
		if record.Kind == TransferKindMint {
			supply += record.Amount
			minted = true
		}
	}
	return supply, minted, nil
}

func (store *stubStore) RecordTransfer(ctx context.Context, record TransferRecord) error {
	if store.recordError != nil {
		return store.recordError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.transfers = append(store.transfers, record)
	return nil
}

func (store *stubStore) ListTransfers(ctx context.Context, account Account, limit int) ([]TransferRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]TransferRecord, 0, limit)
	for index := len(store.transfers) - 1; index >= 0 && len(result) < limit; index-- {
		record := store.transfers[index]
		if record.From == account || record.To == account || record.Spender == account {
			result = append(result, record)
		}
	}
	sort.SliceStable(result, func(left, right int) bool { return result[left].CreatedUnixUTC > result[right].CreatedUnixUTC })
	return result, nil
}

type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (ids *sequentialIDs) generate() string {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	ids.next++
	return "transfer-" + string(rune('a'+ids.next-1))
}

func mustNewLedger(test *testing.T, store Store, options ...LedgerOption) *Ledger {
	test.Helper()
	ledger, err := NewLedger(store, DefaultMetadata(), func() int64 { return clockValue }, options...)
	if err != nil {
		test.Fatalf("new ledger: %v", err)
	}
	return ledger
}

func mustAccount(test *testing.T, raw string) Account {
	test.Helper()
	account, err := NewAccount(raw)
	if err != nil {
		test.Fatalf("account: %v", err)
	}
	return account
}

func mustMint(test *testing.T, ledger *Ledger, treasury Account, amount Amount) {
	test.Helper()
	if _, err := ledger.Mint(context.Background(), treasury, amount); err != nil {
		test.Fatalf("mint: %v", err)
	}
}

func mustTransfer(test *testing.T, ledger *Ledger, from Account, to Account, amount Amount) TransferRecord {
	test.Helper()
	record, err := ledger.Transfer(context.Background(), from, to, amount)
	if err != nil {
		test.Fatalf("transfer: %v", err)
	}
	return record
}

func mustBalance(test *testing.T, ledger *Ledger, account Account) Amount {
	test.Helper()
	balance, err := ledger.BalanceOf(context.Background(), account)
	if err != nil {
		test.Fatalf("balance of %s: %v", account, err)
	}
	return balance
}
