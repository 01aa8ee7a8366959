package register

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
)

const (
	managerValue   = "manager"
	registerValue  = "register"
	purchaserValue = "purchaser"
	strangerValue  = "stranger"
	clockValue     = 100
)

var (
	errStubInsufficientBalance   = errors.New("stub: insufficient balance")
	errStubInsufficientAllowance = errors.New("stub: insufficient allowance")
)

// stubStore is an in-memory Store whose WithTx restores a snapshot when fn or the commit fails.
type stubStore struct {
	mu sync.Mutex

	items    map[ItemID]Price
	receipts map[ReceiptID]Receipt
	events   []ReceiptCreated
	sequence int64

	getReceiptError   error
	upsertItemError   error
	updateTotalError  error
	markFinishedError error
	recordEventError  error
	commitError       error
	transactions      int
}

type stubSnapshot struct {
	items    map[ItemID]Price
	receipts map[ReceiptID]Receipt
	events   []ReceiptCreated
	sequence int64
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		items:    make(map[ItemID]Price),
		receipts: make(map[ReceiptID]Receipt),
	}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	store.mu.Lock()
	snapshot := store.snapshot()
	store.transactions++
	store.mu.Unlock()

	if err := fn(ctx, store); err != nil {
		store.restore(snapshot)
		return err
	}
	if store.commitError != nil {
		store.restore(snapshot)
		return store.commitError
	}
	return nil
}

func (store *stubStore) snapshot() stubSnapshot {
	items := make(map[ItemID]Price, len(store.items))
	for key, value := range store.items {
		items[key] = value
	}
	receipts := make(map[ReceiptID]Receipt, len(store.receipts))
	for key, value := range store.receipts {
		receipts[key] = value
	}
	return stubSnapshot{
		items:    items,
		receipts: receipts,
		events:   append([]ReceiptCreated(nil), store.events...),
		sequence: store.sequence,
	}
}

func (store *stubStore) restore(snapshot stubSnapshot) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.items = snapshot.items
	store.receipts = snapshot.receipts
	store.events = snapshot.events
	store.sequence = snapshot.sequence
}

func (store *stubStore) UpsertItem(ctx context.Context, entry CatalogEntry) error {
	if store.upsertItemError != nil {
		return store.upsertItemError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.items[entry.ItemID()] = entry.Price()
	return nil
}

func (store *stubStore) GetItemPrice(ctx context.Context, itemID ItemID) (Price, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	price, ok := store.items[itemID]
	return price, ok, nil
}

func (store *stubStore) NextReceiptID(ctx context.Context) (ReceiptID, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sequence++
	return NewReceiptID(store.sequence)
}

func (store *stubStore) CreateReceipt(ctx context.Context, receipt Receipt) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.receipts[receipt.ReceiptID()]; exists {
		return fmt.Errorf("receipt %d already exists", receipt.ReceiptID())
	}
	store.receipts[receipt.ReceiptID()] = receipt
	return nil
}

func (store *stubStore) GetReceipt(ctx context.Context, receiptID ReceiptID) (Receipt, error) {
	if store.getReceiptError != nil {
		return Receipt{}, store.getReceiptError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	receipt, ok := store.receipts[receiptID]
	if !ok {
		return Receipt{}, ErrReceiptNotFound
	}
	return receipt, nil
}

func (store *stubStore) UpdateReceiptTotal(ctx context.Context, receiptID ReceiptID, from, to Amount) error {
	if store.updateTotalError != nil {
		return store.updateTotalError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	receipt, ok := store.receipts[receiptID]
	if !ok {
		return ErrReceiptNotFound
	}
	if receipt.Finished() || receipt.TotalPrice() != from {
		return ErrReceiptConflict
	}
	updated, err := NewReceipt(receiptID, receipt.Purchaser(), to, false)
	if err != nil {
		return err
	}
	store.receipts[receiptID] = updated
	return nil
}

func (store *stubStore) MarkReceiptFinished(ctx context.Context, receiptID ReceiptID) error {
	if store.markFinishedError != nil {
		return store.markFinishedError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	receipt, ok := store.receipts[receiptID]
	if !ok {
		return ErrReceiptNotFound
	}
	if receipt.Finished() {
		return ErrReceiptFinalized
	}
	updated, err := NewReceipt(receiptID, receipt.Purchaser(), receipt.TotalPrice(), true)
	if err != nil {
		return err
	}
	store.receipts[receiptID] = updated
	return nil
}

func (store *stubStore) RecordReceiptCreated(ctx context.Context, event ReceiptCreated) error {
	if store.recordEventError != nil {
		return store.recordEventError
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.events = append(store.events, event)
	return nil
}

func (store *stubStore) ListReceiptEvents(ctx context.Context, afterReceiptID int64, limit int) ([]ReceiptCreated, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]ReceiptCreated, 0, limit)
	for _, event := range store.events {
		if event.ReceiptID.Int64() > afterReceiptID {
			result = append(result, event)
		}
	}
	sort.Slice(result, func(left, right int) bool { return result[left].ReceiptID < result[right].ReceiptID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (store *stubStore) mustReceipt(test *testing.T, receiptID ReceiptID) Receipt {
	test.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	receipt, ok := store.receipts[receiptID]
	if !ok {
		test.Fatalf("receipt %d not found", receiptID)
	}
	return receipt
}

type allowanceKey struct {
	owner   Principal
	spender Principal
}

// stubTokens is an in-memory fungible balance ledger.
type stubTokens struct {
	mu          sync.Mutex
	balances    map[Principal]Amount
	allowances  map[allowanceKey]Amount
	transferErr error
	refundErr   error
	transfers   int
}

func newStubTokens(test *testing.T) *stubTokens {
	test.Helper()
	return &stubTokens{
		balances:   make(map[Principal]Amount),
		allowances: make(map[allowanceKey]Amount),
	}
}

func (tokens *stubTokens) fund(account Principal, amount Amount) {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	tokens.balances[account] += amount
}

func (tokens *stubTokens) approve(owner Principal, spender Principal, amount Amount) {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	tokens.allowances[allowanceKey{owner: owner, spender: spender}] = amount
}

func (tokens *stubTokens) balance(account Principal) Amount {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	return tokens.balances[account]
}

func (tokens *stubTokens) TransferFrom(ctx context.Context, spender Principal, from Principal, to Principal, amount Amount) error {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if tokens.transferErr != nil {
		return tokens.transferErr
	}
	key := allowanceKey{owner: from, spender: spender}
	if tokens.allowances[key] < amount {
		return errStubInsufficientAllowance
	}
	if tokens.balances[from] < amount {
		return errStubInsufficientBalance
	}
	tokens.allowances[key] -= amount
	tokens.balances[from] -= amount
	tokens.balances[to] += amount
	tokens.transfers++
	return nil
}

func (tokens *stubTokens) Transfer(ctx context.Context, from Principal, to Principal, amount Amount) error {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	if tokens.refundErr != nil {
		return tokens.refundErr
	}
	if tokens.balances[from] < amount {
		return errStubInsufficientBalance
	}
	tokens.balances[from] -= amount
	tokens.balances[to] += amount
	tokens.transfers++
	return nil
}

func (tokens *stubTokens) BalanceOf(ctx context.Context, account Principal) (Amount, error) {
	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	return tokens.balances[account], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ReceiptCreated
}

func (publisher *recordingPublisher) PublishReceiptCreated(_ context.Context, event ReceiptCreated) {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	publisher.events = append(publisher.events, event)
}

func mustRoles(test *testing.T) Roles {
	test.Helper()
	return Roles{Manager: mustPrincipal(test, managerValue), Register: mustPrincipal(test, registerValue)}
}

func mustNewService(test *testing.T, store Store, tokens TokenService, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, tokens, mustRoles(test), func() int64 { return clockValue }, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustPrincipal(test *testing.T, raw string) Principal {
	test.Helper()
	value, err := NewPrincipal(raw)
	if err != nil {
		test.Fatalf("principal: %v", err)
	}
	return value
}

func mustItemID(test *testing.T, raw string) ItemID {
	test.Helper()
	value, err := NewItemID(raw)
	if err != nil {
		test.Fatalf("item id: %v", err)
	}
	return value
}

func mustPrice(test *testing.T, raw int64) Price {
	test.Helper()
	value, err := NewPrice(raw)
	if err != nil {
		test.Fatalf("price: %v", err)
	}
	return value
}

func mustAmount(test *testing.T, raw int64) Amount {
	test.Helper()
	value, err := NewAmount(raw)
	if err != nil {
		test.Fatalf("amount: %v", err)
	}
	return value
}

func mustAddItem(test *testing.T, service *Service, itemID string, price int64) ItemID {
	test.Helper()
	item := mustItemID(test, itemID)
	if err := service.AddItem(context.Background(), mustPrincipal(test, managerValue), item, mustPrice(test, price)); err != nil {
		test.Fatalf("add item %s: %v", itemID, err)
	}
	return item
}

func mustOpenReceipt(test *testing.T, service *Service, purchaser Principal) ReceiptID {
	test.Helper()
	receiptID, err := service.NewReceipt(context.Background(), purchaser, purchaser)
	if err != nil {
		test.Fatalf("new receipt: %v", err)
	}
	return receiptID
}

func mustRingUp(test *testing.T, service *Service, purchaser Principal, receiptID ReceiptID, itemID ItemID) Receipt {
	test.Helper()
	receipt, err := service.RingUpItem(context.Background(), purchaser, receiptID, itemID)
	if err != nil {
		test.Fatalf("ring up %s: %v", itemID.String(), err)
	}
	return receipt
}
