package register

import (
	"context"
	"errors"
	"testing"
)

func TestAddItemByManagerSetsPrice(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name  string
		item  string
		price int64
	}{
		{name: "apple", item: "apple", price: 3},
		{name: "free item", item: "napkin", price: 0},
		{name: "whitespace kept verbatim", item: " banana ", price: 5},
		{name: "binary key", item: "\x00\xffkey", price: 11},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			service := mustNewService(test, newStubStore(test), newStubTokens(test))
			item := mustAddItem(test, service, testCase.item, testCase.price)

			price, err := service.PriceOf(context.Background(), item)
			if err != nil {
				test.Fatalf("price of: %v", err)
			}
			if price.Int64() != testCase.price {
				test.Fatalf("expected price %d, got %d", testCase.price, price)
			}
		})
	}
}

func TestAddItemRejectsNonManager(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store, newStubTokens(test))
	item := mustAddItem(test, service, "orange", 4)

	for _, callerValue := range []string{purchaserValue, registerValue, strangerValue} {
		err := service.AddItem(context.Background(), mustPrincipal(test, callerValue), item, mustPrice(test, 99))
		if !errors.Is(err, ErrUnauthorized) {
			test.Fatalf("caller %s: expected ErrUnauthorized, got %v", callerValue, err)
		}
	}
	err := service.AddItem(context.Background(), Principal{}, item, mustPrice(test, 99))
	if !errors.Is(err, ErrUnauthorized) {
		test.Fatalf("zero caller: expected ErrUnauthorized, got %v", err)
	}
	price, err := service.PriceOf(context.Background(), item)
	if err != nil {
		test.Fatalf("price of: %v", err)
	}
	if price != 4 {
		test.Fatalf("expected catalog unchanged at 4, got %d", price)
	}
}

func TestAddItemOverwritesExistingPrice(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore(test), newStubTokens(test))
	item := mustAddItem(test, service, "apple", 3)
	mustAddItem(test, service, "apple", 3)
	mustAddItem(test, service, "apple", 7)

	price, err := service.PriceOf(context.Background(), item)
	if err != nil {
		test.Fatalf("price of: %v", err)
	}
	if price != 7 {
		test.Fatalf("expected overwritten price 7, got %d", price)
	}
}

func TestPriceOfUnknownItemIsZero(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore(test), newStubTokens(test))
	item := mustItemID(test, "unknown")

	price, err := service.PriceOf(context.Background(), item)
	if err != nil {
		test.Fatalf("price of: %v", err)
	}
	if price != 0 {
		test.Fatalf("expected 0 for unknown item, got %d", price)
	}
	_, found, err := service.LookupPrice(context.Background(), item)
	if err != nil {
		test.Fatalf("lookup price: %v", err)
	}
	if found {
		test.Fatalf("expected unknown item to be reported as absent")
	}
}

func TestLookupPriceDistinguishesFreeItems(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore(test), newStubTokens(test))
	item := mustAddItem(test, service, "sample", 0)

	price, found, err := service.LookupPrice(context.Background(), item)
	if err != nil {
		test.Fatalf("lookup price: %v", err)
	}
	if !found || price != 0 {
		test.Fatalf("expected priced free item, got price=%d found=%t", price, found)
	}
}

func TestAddItemValidatesInput(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore(test), newStubTokens(test))
	manager := mustPrincipal(test, managerValue)

	if err := service.AddItem(context.Background(), manager, ItemID{}, 1); !errors.Is(err, ErrInvalidItemID) {
		test.Fatalf("expected ErrInvalidItemID, got %v", err)
	}
	if err := service.AddItem(context.Background(), manager, mustItemID(test, "apple"), -1); !errors.Is(err, ErrInvalidPrice) {
		test.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := service.PriceOf(context.Background(), ItemID{}); !errors.Is(err, ErrInvalidItemID) {
		test.Fatalf("expected ErrInvalidItemID from PriceOf, got %v", err)
	}
}

func TestAddItemReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.upsertItemError = errStoreFailure
	service := mustNewService(test, store, newStubTokens(test))

	err := service.AddItem(context.Background(), mustPrincipal(test, managerValue), mustItemID(test, "apple"), 3)
	if !errors.Is(err, errStoreFailure) {
		test.Fatalf("expected store failure, got %v", err)
	}
}
