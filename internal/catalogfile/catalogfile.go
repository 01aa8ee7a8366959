// Package catalogfile loads catalog seed files and applies them to a register.
//
// A seed file is YAML:
//
//	items:
//	  - id: apple
//	    price: 3
//	  - id: banana
//	    price: 5
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog  = errors.New("catalogfile: no items")
	ErrDuplicateItem = errors.New("catalogfile: duplicate item")
)

// ItemAdder is the catalog write operation used by Apply.
type ItemAdder interface {
	AddItem(ctx context.Context, caller register.Principal, itemID register.ItemID, price register.Price) error
}

type document struct {
	Items []item `yaml:"items"`
}

type item struct {
	ID    string `yaml:"id"`
	Price int64  `yaml:"price"`
}

// Load reads and validates the seed file at path.
func Load(path string) ([]register.CatalogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a seed document, rejecting unknown fields, invalid entries and duplicate ids.
func Parse(reader io.Reader) ([]register.CatalogEntry, error) {
	var parsed document
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, ErrEmptyCatalog
	}
	entries := make([]register.CatalogEntry, 0, len(parsed.Items))
	seen := make(map[register.ItemID]struct{}, len(parsed.Items))
	for index, raw := range parsed.Items {
		itemID, err := register.NewItemID(raw.ID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}
		if _, duplicate := seen[itemID]; duplicate {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, raw.ID)
		}
		seen[itemID] = struct{}{}
		price, err := register.NewPrice(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", raw.ID, err)
		}
		entry, err := register.NewCatalogEntry(itemID, price)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", raw.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Apply adds every entry as manager and returns how many were written before the first failure.
func Apply(ctx context.Context, adder ItemAdder, manager register.Principal, entries []register.CatalogEntry) (int, error) {
	for index, entry := range entries {
		if err := adder.AddItem(ctx, manager, entry.ItemID(), entry.Price()); err != nil {
			return index, fmt.Errorf("add item %q: %w", entry.ItemID().String(), err)
		}
	}
	return len(entries), nil
}
