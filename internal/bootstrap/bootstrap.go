// Package bootstrap assembles the register service and the token ledger from their stores.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/internal/settlement"
	"github.com/MarkoPoloResearchLab/cashregister/internal/zaplog"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("bootstrap: invalid config")

// Config describes one register deployment.
type Config struct {
	Roles         register.Roles
	Treasury      register.Principal
	InitialSupply token.Amount
	Metadata      token.Metadata
	// SharedTransactions is set when the token store joins the register store's transactions.
	SharedTransactions bool
	Logger             *zap.Logger
	Now                func() int64
}

// Validate normalizes defaults and checks the roles and token metadata.
func (cfg *Config) Validate() error {
	if err := cfg.Roles.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Treasury.IsZero() {
		cfg.Treasury = cfg.Roles.Manager
	}
	if cfg.Metadata == (token.Metadata{}) {
		cfg.Metadata = token.DefaultMetadata()
	}
	if err := cfg.Metadata.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.InitialSupply < 0 {
		return fmt.Errorf("%w: initial supply must not be negative", ErrInvalidConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UTC().Unix() }
	}
	return nil
}

// CashRegister holds the assembled services.
type CashRegister struct {
	Service *register.Service
	Ledger  *token.Ledger
	Config  Config
}

// Assemble wires the token ledger, the settlement adapter and the register service.
func Assemble(registerStore register.Store, tokenStore token.Store, cfg Config) (*CashRegister, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := zaplog.New(cfg.Logger)
	ledger, err := token.NewLedger(tokenStore, cfg.Metadata, cfg.Now, token.WithOperationLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("token ledger init: %w", err)
	}
	tokens, err := settlement.New(ledger)
	if err != nil {
		return nil, fmt.Errorf("settlement init: %w", err)
	}
	options := []register.ServiceOption{
		register.WithOperationLogger(logger),
		register.WithEventPublisher(logger),
	}
	if cfg.SharedTransactions {
		options = append(options, register.WithAtomicSettlement())
	}
	service, err := register.NewService(registerStore, tokens, cfg.Roles, cfg.Now, options...)
	if err != nil {
		return nil, fmt.Errorf("register service init: %w", err)
	}
	return &CashRegister{Service: service, Ledger: ledger, Config: cfg}, nil
}

// MintInitialSupply credits the configured supply to the treasury once. It reports whether this call minted.
func (cashRegister *CashRegister) MintInitialSupply(ctx context.Context) (bool, error) {
	if cashRegister.Config.InitialSupply == 0 {
		return false, nil
	}
	treasury, err := settlement.Account(cashRegister.Config.Treasury)
	if err != nil {
		return false, err
	}
	_, err = cashRegister.Ledger.Mint(ctx, treasury, cashRegister.Config.InitialSupply)
	if errors.Is(err, token.ErrSupplyAlreadyMinted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mint initial supply: %w", err)
	}
	return true, nil
}
