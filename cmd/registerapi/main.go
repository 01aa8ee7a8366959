package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarkoPoloResearchLab/cashregister/internal/registerapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagListenAddr        = "listen-addr"
	flagRegisterAddr      = "register-addr"
	flagRegisterInsecure  = "register-insecure"
	flagRegisterTimeout   = "register-timeout"
	flagAllowedOrigins    = "allowed-origins"
	flagJWTSigningKey     = "jwt-signing-key"
	flagJWTIssuer         = "jwt-issuer"
	flagJWTCookieName     = "jwt-cookie-name"
	flagServiceSigningKey = "service-signing-key"
	flagServiceIssuer     = "service-issuer"
	flagRegisterAccount   = "register-account"
	envPrefix             = "REGISTERAPI"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "registerapi: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := registerapi.Config{}
	cmd := &cobra.Command{
		Use:           "registerapi",
		Short:         "HTTP façade for the cash register",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, &cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return registerapi.Run(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, "", "HTTP listen address")
	cmd.Flags().String(flagRegisterAddr, "", "registerd gRPC address")
	cmd.Flags().Bool(flagRegisterInsecure, false, "connect to registerd without TLS")
	cmd.Flags().Duration(flagRegisterTimeout, 0, "register RPC timeout (e.g. 3s)")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins")
	cmd.Flags().String(flagJWTSigningKey, "", "TAuth session JWT signing key (required)")
	cmd.Flags().String(flagJWTIssuer, "", "expected session JWT issuer")
	cmd.Flags().String(flagJWTCookieName, "", "session JWT cookie name")
	cmd.Flags().String(flagServiceSigningKey, "", "signing key shared with registerd for bearer tokens (required)")
	cmd.Flags().String(flagServiceIssuer, "", "issuer stamped on bearer tokens sent to registerd")
	cmd.Flags().String(flagRegisterAccount, "", "register settlement account purchasers approve (required)")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *registerapi.Config) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, flagName := range []string{
		flagListenAddr, flagRegisterAddr, flagRegisterInsecure, flagRegisterTimeout, flagAllowedOrigins,
		flagJWTSigningKey, flagJWTIssuer, flagJWTCookieName, flagServiceSigningKey, flagServiceIssuer, flagRegisterAccount,
	} {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.ListenAddr = strings.TrimSpace(v.GetString(flagListenAddr))
	cfg.RegisterAddress = strings.TrimSpace(v.GetString(flagRegisterAddr))
	cfg.RegisterInsecure = v.GetBool(flagRegisterInsecure)
	cfg.RegisterTimeout = v.GetDuration(flagRegisterTimeout)
	cfg.AllowedOrigins = registerapi.ParseAllowedOrigins(v.GetString(flagAllowedOrigins))
	cfg.SessionSigningKey = v.GetString(flagJWTSigningKey)
	cfg.SessionIssuer = strings.TrimSpace(v.GetString(flagJWTIssuer))
	cfg.SessionCookieName = strings.TrimSpace(v.GetString(flagJWTCookieName))
	cfg.ServiceSigningKey = v.GetString(flagServiceSigningKey)
	cfg.ServiceIssuer = strings.TrimSpace(v.GetString(flagServiceIssuer))
	cfg.RegisterAccount = strings.TrimSpace(v.GetString(flagRegisterAccount))

	return cfg.Validate()
}
