package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfigRequiresRoles(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "manager", args: []string{"--register-account=register", "--jwt-signing-key=k"}, want: flagManagerID},
		{name: "register", args: []string{"--manager-id=manager", "--jwt-signing-key=k"}, want: flagRegisterAccount},
		{name: "signing key", args: []string{"--manager-id=manager", "--register-account=register"}, want: flagJWTSigningKey},
		{name: "store", args: []string{"--manager-id=manager", "--register-account=register", "--jwt-signing-key=k", "--store=mongo"}, want: flagStore},
		{name: "supply", args: []string{"--manager-id=manager", "--register-account=register", "--jwt-signing-key=k", "--initial-supply=-1"}, want: flagInitialSupply},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cmd := newRootCommand()
			cmd.SetArgs(append([]string{"catalog", "import", "missing.yaml"}, testCase.args...))
			cmd.SetOut(&bytes.Buffer{})
			err := cmd.Execute()
			require.Error(t, err)
			require.Contains(t, err.Error(), testCase.want)
		})
	}
}

func TestCatalogImportWritesItems(t *testing.T) {
	dir := t.TempDir()
	databaseURL := "sqlite://" + filepath.Join(dir, "register.db")
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("items:\n  - id: apple\n    price: 3\n  - id: banana\n    price: 5\n"), 0o600))

	output := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(output)
	cmd.SetArgs([]string{
		"catalog", "import", catalogPath,
		"--database-url=" + databaseURL,
		"--manager-id=manager",
		"--register-account=register",
		"--jwt-signing-key=secret",
	})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "imported 2 items", strings.TrimSpace(output.String()))

	cfg := &runtimeConfig{
		DatabaseURL:     databaseURL,
		Store:           storeGorm,
		ManagerID:       "manager",
		RegisterAccount: "register",
		JWTSigningKey:   "secret",
	}
	cashRegister, cleanup, err := openCashRegister(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	itemID, err := register.NewItemID("banana")
	require.NoError(t, err)
	price, found, err := cashRegister.Service.LookupPrice(context.Background(), itemID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(5), price.Int64())
}

func TestOpenCashRegisterRejectsPgxOnSQLite(t *testing.T) {
	cfg := &runtimeConfig{
		DatabaseURL:     "sqlite://" + filepath.Join(t.TempDir(), "register.db"),
		Store:           storePgx,
		ManagerID:       "manager",
		RegisterAccount: "register",
		JWTSigningKey:   "secret",
	}
	_, _, err := openCashRegister(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "postgres")
}
