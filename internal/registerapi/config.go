package registerapi

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":9090"
	defaultRegisterAddr    = "localhost:7000"
	defaultAllowedOrigin   = "http://localhost:8000"
	defaultSessionIssuer   = "tauth"
	defaultSessionCookie   = "app_session"
	defaultServiceIssuer   = "cashregister"
	defaultRegisterTimeout = 3 * time.Second
	walletHistoryLimit     = 10
)

// Config aggregates runtime settings for the HTTP façade.
type Config struct {
	ListenAddr        string
	RegisterAddress   string
	RegisterInsecure  bool
	RegisterTimeout   time.Duration
	AllowedOrigins    []string
	SessionSigningKey string
	SessionIssuer     string
	SessionCookieName string
	// ServiceSigningKey and ServiceIssuer must match the registerd bearer-token settings.
	ServiceSigningKey string
	ServiceIssuer     string
	// RegisterAccount is the settlement account purchasers approve as spender.
	RegisterAccount string
}

// Validate ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	cfg.ListenAddr = defaultIfEmpty(cfg.ListenAddr, defaultListenAddr)
	cfg.RegisterAddress = defaultIfEmpty(cfg.RegisterAddress, defaultRegisterAddr)
	if cfg.RegisterTimeout <= 0 {
		cfg.RegisterTimeout = defaultRegisterTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultAllowedOrigin}
	}
	cfg.SessionIssuer = defaultIfEmpty(cfg.SessionIssuer, defaultSessionIssuer)
	cfg.SessionCookieName = defaultIfEmpty(cfg.SessionCookieName, defaultSessionCookie)
	cfg.ServiceIssuer = defaultIfEmpty(cfg.ServiceIssuer, defaultServiceIssuer)
	cfg.RegisterAccount = strings.TrimSpace(cfg.RegisterAccount)
	if len(cfg.SessionSigningKey) == 0 {
		return fmt.Errorf("jwt signing key is required")
	}
	if len(cfg.ServiceSigningKey) == 0 {
		return fmt.Errorf("service signing key is required")
	}
	if cfg.RegisterAccount == "" {
		return fmt.Errorf("register account is required")
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// ParseAllowedOrigins splits comma-delimited origins into a slice.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
