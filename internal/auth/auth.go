// Package auth carries caller identity between the HTTP façade and the gRPC server.
//
// Callers present an HS256 JWT whose subject is their principal. The façade mints
// short-lived service tokens for the session user; the server verifies them in a
// unary interceptor before any handler runs.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer   = "cashregister"
	defaultTokenTTL = 5 * time.Minute
)

var (
	ErrInvalidConfig = errors.New("auth: invalid config")
	ErrMissingToken  = errors.New("auth: missing bearer token")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// Config holds the shared HS256 signing key and the issuer both sides agree on.
type Config struct {
	SigningKey []byte
	Issuer     string
	TokenTTL   time.Duration
}

// Validate normalizes defaults and rejects an empty signing key.
func (cfg *Config) Validate() error {
	if len(cfg.SigningKey) == 0 {
		return fmt.Errorf("%w: signing key is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return nil
}

// Issuer mints tokens for principals.
type Issuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		signingKey: cfg.SigningKey,
		issuer:     cfg.Issuer,
		ttl:        cfg.TokenTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue returns a signed token whose subject is principal.
func (issuer *Issuer) Issue(principal register.Principal) (string, error) {
	if principal.IsZero() {
		return "", fmt.Errorf("%w: empty principal", ErrInvalidToken)
	}
	issuedAt := issuer.now()
	claims := jwt.RegisteredClaims{
		Subject:   principal.String(),
		Issuer:    issuer.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(issuer.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verifier checks tokens minted by an Issuer sharing the same Config.
type Verifier struct {
	signingKey []byte
	issuer     string
}

// NewVerifier validates cfg and returns a Verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Verifier{signingKey: cfg.SigningKey, issuer: cfg.Issuer}, nil
}

// Verify parses raw and returns the principal named by its subject.
func (verifier *Verifier) Verify(raw string) (register.Principal, error) {
	if strings.TrimSpace(raw) == "" {
		return register.Principal{}, ErrMissingToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return verifier.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(verifier.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return register.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	principal, err := register.NewPrincipal(claims.Subject)
	if err != nil {
		return register.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return principal, nil
}
