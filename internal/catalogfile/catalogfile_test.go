package catalogfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/stretchr/testify/require"
)

type recordingAdder struct {
	prices  map[string]int64
	callers []string
	failOn  string
}

func (adder *recordingAdder) AddItem(_ context.Context, caller register.Principal, itemID register.ItemID, price register.Price) error {
	if itemID.String() == adder.failOn {
		return register.ErrUnauthorized
	}
	if adder.prices == nil {
		adder.prices = make(map[string]int64)
	}
	adder.prices[itemID.String()] = price.Int64()
	adder.callers = append(adder.callers, caller.String())
	return nil
}

func TestParse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		input   string
		want    map[string]int64
		wantErr error
	}{
		{
			name:  "valid",
			input: "items:\n  - id: apple\n    price: 3\n  - id: banana\n    price: 5\n  - id: napkin\n    price: 0\n",
			want:  map[string]int64{"apple": 3, "banana": 5, "napkin": 0},
		},
		{name: "empty document", input: "", wantErr: ErrEmptyCatalog},
		{name: "no items", input: "items: []\n", wantErr: ErrEmptyCatalog},
		{name: "negative price", input: "items:\n  - id: apple\n    price: -1\n", wantErr: register.ErrInvalidPrice},
		{name: "blank id", input: "items:\n  - id: \"  \"\n    price: 1\n", wantErr: register.ErrInvalidItemID},
		{name: "duplicate", input: "items:\n  - id: apple\n    price: 1\n  - id: apple\n    price: 2\n", wantErr: ErrDuplicateItem},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			entries, err := Parse(strings.NewReader(testCase.input))
			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			got := make(map[string]int64, len(entries))
			for _, entry := range entries {
				got[entry.ItemID().String()] = entry.Price().Int64()
			}
			require.Equal(t, testCase.want, got)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := Parse(strings.NewReader("items:\n  - id: apple\n    prcie: 3\n"))
	require.Error(t, err)
}

func TestParseKeepsIDsVerbatim(t *testing.T) {
	t.Parallel()
	entries, err := Parse(strings.NewReader("items:\n  - id: \" Apple \"\n    price: 2\n  - id: apple\n    price: 3\n"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, " Apple ", entries[0].ItemID().String())
}

func TestLoadAndApply(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - id: apple\n    price: 3\n  - id: banana\n    price: 5\n"), 0o600))

	entries, err := Load(path)
	require.NoError(t, err)
	manager, err := register.NewPrincipal("manager")
	require.NoError(t, err)

	adder := &recordingAdder{}
	applied, err := Apply(context.Background(), adder, manager, entries)
	require.NoError(t, err)
	require.Equal(t, 2, applied)
	require.Equal(t, map[string]int64{"apple": 3, "banana": 5}, adder.prices)
	require.Equal(t, []string{"manager", "manager"}, adder.callers)
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	entries, err := Parse(strings.NewReader("items:\n  - id: apple\n    price: 3\n  - id: banana\n    price: 5\n  - id: cherry\n    price: 7\n"))
	require.NoError(t, err)
	manager, err := register.NewPrincipal("manager")
	require.NoError(t, err)

	adder := &recordingAdder{failOn: "banana"}
	applied, err := Apply(context.Background(), adder, manager, entries)
	require.True(t, errors.Is(err, register.ErrUnauthorized))
	require.Equal(t, 1, applied)
	require.NotContains(t, adder.prices, "cherry")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
