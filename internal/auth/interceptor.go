package auth

import (
	"context"
	"strings"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	metadataAuthorization = "authorization"
	bearerPrefix          = "bearer "

	errorUnauthenticated = "unauthenticated"
)

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, principal register.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the caller stored by the interceptor.
func PrincipalFromContext(ctx context.Context) (register.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(register.Principal)
	if !ok || principal.IsZero() {
		return register.Principal{}, false
	}
	return principal, true
}

// UnaryServerInterceptor rejects calls without a valid bearer token and stores the caller in the context.
func UnaryServerInterceptor(verifier *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, request any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		raw, err := bearerToken(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, errorUnauthenticated)
		}
		principal, err := verifier.Verify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, errorUnauthenticated)
		}
		return handler(WithPrincipal(ctx, principal), request)
	}
}

func bearerToken(ctx context.Context) (string, error) {
	incoming, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	for _, value := range incoming.Get(metadataAuthorization) {
		if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(value[len(bearerPrefix):]), nil
		}
	}
	return "", ErrMissingToken
}
