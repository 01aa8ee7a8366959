package auth

import (
	"context"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"google.golang.org/grpc/credentials"
)

// TokenCredentials attaches a freshly minted bearer token for one principal to every call.
type TokenCredentials struct {
	issuer     *Issuer
	principal  register.Principal
	requireTLS bool
}

var _ credentials.PerRPCCredentials = TokenCredentials{}

// NewTokenCredentials returns per-RPC credentials acting as principal.
func NewTokenCredentials(issuer *Issuer, principal register.Principal, requireTLS bool) TokenCredentials {
	return TokenCredentials{issuer: issuer, principal: principal, requireTLS: requireTLS}
}

func (tokenCredentials TokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	signed, err := tokenCredentials.issuer.Issue(tokenCredentials.principal)
	if err != nil {
		return nil, err
	}
	return map[string]string{metadataAuthorization: "Bearer " + signed}, nil
}

func (tokenCredentials TokenCredentials) RequireTransportSecurity() bool {
	return tokenCredentials.requireTLS
}
