package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarkoPoloResearchLab/cashregister/internal/auth"
	"github.com/MarkoPoloResearchLab/cashregister/internal/bootstrap"
	"github.com/MarkoPoloResearchLab/cashregister/internal/grpcserver"
	"github.com/MarkoPoloResearchLab/cashregister/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/cashregister/internal/store/pgstore"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	flagDatabaseURL     = "database-url"
	flagListenAddr      = "listen-addr"
	flagStore           = "store"
	flagManagerID       = "manager-id"
	flagRegisterAccount = "register-account"
	flagTreasury        = "treasury"
	flagJWTSigningKey   = "jwt-signing-key"
	flagJWTIssuer       = "jwt-issuer"
	flagTokenName       = "token-name"
	flagTokenSymbol     = "token-symbol"
	flagTokenDecimals   = "token-decimals"
	flagInitialSupply   = "initial-supply"
	envPrefix           = "REGISTERD"

	storeGorm = "gorm"
	storePgx  = "pgx"

	defaultDatabaseURL    = "sqlite:///tmp/cashregister.db"
	defaultGRPCListenAddr = ":7000"
	defaultJWTIssuer      = "cashregister"
)

type runtimeConfig struct {
	DatabaseURL     string
	ListenAddr      string
	Store           string
	ManagerID       string
	RegisterAccount string
	Treasury        string
	JWTSigningKey   string
	JWTIssuer       string
	Metadata        token.Metadata
	InitialSupply   int64
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "registerd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "registerd",
		Short:         "Cash register gRPC server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagDatabaseURL, defaultDatabaseURL, "postgres:// or sqlite:// database URL")
	flags.String(flagListenAddr, defaultGRPCListenAddr, "gRPC listen address")
	flags.String(flagStore, storeGorm, "register store implementation (gorm or pgx)")
	flags.String(flagManagerID, "", "principal holding the manager role (required)")
	flags.String(flagRegisterAccount, "", "principal holding the register settlement account (required)")
	flags.String(flagTreasury, "", "account credited with the initial supply (defaults to the manager)")
	flags.String(flagJWTSigningKey, "", "HS256 key for service bearer tokens (required)")
	flags.String(flagJWTIssuer, defaultJWTIssuer, "expected bearer token issuer")
	flags.String(flagTokenName, token.DefaultName, "settlement token name")
	flags.String(flagTokenSymbol, token.DefaultSymbol, "settlement token symbol")
	flags.Int32(flagTokenDecimals, token.DefaultDecimals, "settlement token decimals")
	flags.Int64(flagInitialSupply, 0, "supply minted to the treasury on first start")

	cmd.AddCommand(newCatalogCommand(cfg))
	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, flagName := range []string{
		flagDatabaseURL, flagListenAddr, flagStore, flagManagerID, flagRegisterAccount, flagTreasury,
		flagJWTSigningKey, flagJWTIssuer, flagTokenName, flagTokenSymbol, flagTokenDecimals, flagInitialSupply,
	} {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}
	if err := v.BindEnv(flagDatabaseURL, envPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return err
	}

	cfg.DatabaseURL = strings.TrimSpace(v.GetString(flagDatabaseURL))
	cfg.ListenAddr = strings.TrimSpace(v.GetString(flagListenAddr))
	cfg.Store = strings.ToLower(strings.TrimSpace(v.GetString(flagStore)))
	cfg.ManagerID = strings.TrimSpace(v.GetString(flagManagerID))
	cfg.RegisterAccount = strings.TrimSpace(v.GetString(flagRegisterAccount))
	cfg.Treasury = strings.TrimSpace(v.GetString(flagTreasury))
	cfg.JWTSigningKey = v.GetString(flagJWTSigningKey)
	cfg.JWTIssuer = strings.TrimSpace(v.GetString(flagJWTIssuer))
	cfg.Metadata = token.Metadata{
		Name:     strings.TrimSpace(v.GetString(flagTokenName)),
		Symbol:   strings.TrimSpace(v.GetString(flagTokenSymbol)),
		Decimals: v.GetInt32(flagTokenDecimals),
	}
	cfg.InitialSupply = v.GetInt64(flagInitialSupply)
	return cfg.validate()
}

func (cfg *runtimeConfig) validate() error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("%s is required", flagDatabaseURL)
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("%s is required", flagListenAddr)
	}
	if cfg.Store != storeGorm && cfg.Store != storePgx {
		return fmt.Errorf("%s must be %q or %q", flagStore, storeGorm, storePgx)
	}
	if cfg.ManagerID == "" {
		return fmt.Errorf("%s is required", flagManagerID)
	}
	if cfg.RegisterAccount == "" {
		return fmt.Errorf("%s is required", flagRegisterAccount)
	}
	if cfg.JWTSigningKey == "" {
		return fmt.Errorf("%s is required", flagJWTSigningKey)
	}
	if cfg.InitialSupply < 0 {
		return fmt.Errorf("%s must not be negative", flagInitialSupply)
	}
	return nil
}

func (cfg *runtimeConfig) bootstrapConfig(logger *zap.Logger) (bootstrap.Config, error) {
	manager, err := register.NewPrincipal(cfg.ManagerID)
	if err != nil {
		return bootstrap.Config{}, err
	}
	registerPrincipal, err := register.NewPrincipal(cfg.RegisterAccount)
	if err != nil {
		return bootstrap.Config{}, err
	}
	var treasury register.Principal
	if cfg.Treasury != "" {
		if treasury, err = register.NewPrincipal(cfg.Treasury); err != nil {
			return bootstrap.Config{}, err
		}
	}
	return bootstrap.Config{
		Roles:         register.Roles{Manager: manager, Register: registerPrincipal},
		Treasury:      treasury,
		InitialSupply: token.Amount(cfg.InitialSupply),
		Metadata:      cfg.Metadata,
		Logger:        logger,
	}, nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cashRegister, cleanup, err := openCashRegister(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	minted, err := cashRegister.MintInitialSupply(ctx)
	if err != nil {
		return err
	}
	if minted {
		logger.Info("initial supply minted",
			zap.String("treasury", cashRegister.Config.Treasury.String()),
			zap.Int64("amount", cfg.InitialSupply))
	}

	verifier, err := auth.NewVerifier(auth.Config{SigningKey: []byte(cfg.JWTSigningKey), Issuer: cfg.JWTIssuer})
	if err != nil {
		return fmt.Errorf("verifier init: %w", err)
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	grpcServer, err := grpcserver.New(cashRegister.Service, cashRegister.Ledger, verifier)
	if err != nil {
		_ = lis.Close()
		return fmt.Errorf("grpc server init: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server starting", zap.String("listen_addr", cfg.ListenAddr), zap.String("store", cfg.Store))
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
		grpcServer.GracefulStop()
		if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return serveErr
		}
		return nil
	case serveErr := <-errCh:
		if errors.Is(serveErr, grpc.ErrServerStopped) {
			return nil
		}
		return serveErr
	}
}

// openCashRegister opens the configured stores and assembles the service. With --store=pgx both the register
// and token tables go through one pgx pool; otherwise both live in gorm.
func openCashRegister(ctx context.Context, cfg *runtimeConfig, logger *zap.Logger) (*bootstrap.CashRegister, func(), error) {
	assembleConfig, err := cfg.bootstrapConfig(logger)
	if err != nil {
		return nil, nil, err
	}

	var (
		registerStore register.Store
		tokenStore    token.Store
		cleanup       func()
	)
	switch cfg.Store {
	case storePgx:
		driver, _, err := gormstore.ResolveDriver(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database url: %w", err)
		}
		if driver != gormstore.DriverPostgres {
			return nil, nil, fmt.Errorf("%s=%s requires a postgres database url", flagStore, storePgx)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgx pool: %w", err)
		}
		if err := pgstore.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		registerStore = pgstore.New(pool)
		tokenStore = pgstore.NewTokenStore(pool)
		cleanup = pool.Close
	default:
		gormDB, _, closeDB, err := gormstore.Open(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("database open: %w", err)
		}
		if err := gormstore.Migrate(gormDB); err != nil {
			_ = closeDB()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		registerStore = gormstore.New(gormDB)
		tokenStore = gormstore.NewTokenStore(gormDB)
		cleanup = func() { _ = closeDB() }
	}
	// Both store pairs join one transaction through the context.
	assembleConfig.SharedTransactions = true

	cashRegister, err := bootstrap.Assemble(registerStore, tokenStore, assembleConfig)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return cashRegister, cleanup, nil
}
