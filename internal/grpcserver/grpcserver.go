// Package grpcserver exposes the register and token ledger over gRPC.
package grpcserver

import (
	"fmt"

	"github.com/MarkoPoloResearchLab/cashregister/api/cashregister/v1"
	"github.com/MarkoPoloResearchLab/cashregister/internal/auth"
	"github.com/MarkoPoloResearchLab/cashregister/internal/settlement"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"google.golang.org/grpc"
)

// New returns a gRPC server with both services registered behind the bearer-token interceptor.
func New(registerService *register.Service, tokenLedger *token.Ledger, verifier *auth.Verifier, options ...grpc.ServerOption) (*grpc.Server, error) {
	registerAccount, err := settlement.Account(registerService.Roles().Register)
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}
	serverOptions := append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(auth.UnaryServerInterceptor(verifier))}, options...)
	server := grpc.NewServer(serverOptions...)
	cashregisterv1.RegisterRegisterServiceServer(server, NewRegisterServer(registerService))
	cashregisterv1.RegisterTokenServiceServer(server, NewTokenServer(tokenLedger, registerAccount))
	return server, nil
}
