package grpcserver

import (
	"context"
	"fmt"

	"github.com/MarkoPoloResearchLab/cashregister/api/cashregister/v1"
	"github.com/MarkoPoloResearchLab/cashregister/internal/settlement"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
)

// TokenServer exposes the settlement-token ledger over gRPC. Every movement acts on the caller's own balance.
// The register's settlement account never moves funds here; only the register service does that.
type TokenServer struct {
	cashregisterv1.UnimplementedTokenServiceServer
	tokenLedger     *token.Ledger
	registerAccount token.Account
}

// NewTokenServer constructs a gRPC server for the token ledger guarding registerAccount.
func NewTokenServer(tokenLedger *token.Ledger, registerAccount token.Account) *TokenServer {
	return &TokenServer{tokenLedger: tokenLedger, registerAccount: registerAccount}
}

// requireNotRegister rejects movements that would debit or spend on behalf of the register account.
func (server *TokenServer) requireNotRegister(role string, account token.Account) error {
	if !server.registerAccount.IsZero() && account == server.registerAccount {
		return mapToGRPCError(fmt.Errorf("%w: the register account cannot act as %s", register.ErrUnauthorized, role))
	}
	return nil
}

func (server *TokenServer) TokenInfo(ctx context.Context, _ *cashregisterv1.TokenInfoRequest) (*cashregisterv1.TokenInfoResponse, error) {
	supply, err := server.tokenLedger.TotalSupply(ctx)
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	metadata := server.tokenLedger.Metadata()
	return &cashregisterv1.TokenInfoResponse{
		Name:        metadata.Name,
		Symbol:      metadata.Symbol,
		Decimals:    metadata.Decimals,
		TotalSupply: supply.Int64(),
	}, nil
}

func (server *TokenServer) BalanceOf(ctx context.Context, request *cashregisterv1.BalanceOfRequest) (*cashregisterv1.AmountResponse, error) {
	account, err := accountOrCaller(ctx, request.GetAccount())
	if err != nil {
		return nil, err
	}
	balance, operationError := server.tokenLedger.BalanceOf(ctx, account)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.AmountResponse{Amount: balance.Int64()}, nil
}

func (server *TokenServer) Allowance(ctx context.Context, request *cashregisterv1.AllowanceRequest) (*cashregisterv1.AmountResponse, error) {
	owner, err := accountOrCaller(ctx, request.GetOwner())
	if err != nil {
		return nil, err
	}
	spender, err := token.NewAccount(request.GetSpender())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	allowance, operationError := server.tokenLedger.Allowance(ctx, owner, spender)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.AmountResponse{Amount: allowance.Int64()}, nil
}

func (server *TokenServer) Approve(ctx context.Context, request *cashregisterv1.ApproveRequest) (*cashregisterv1.ApproveResponse, error) {
	owner, err := callerAccount(ctx)
	if err != nil {
		return nil, err
	}
	if err := server.requireNotRegister("owner", owner); err != nil {
		return nil, err
	}
	spender, err := token.NewAccount(request.GetSpender())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	amount, err := token.NewAmount(request.GetAmount())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	if operationError := server.tokenLedger.Approve(ctx, owner, spender, amount); operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.ApproveResponse{}, nil
}

func (server *TokenServer) Transfer(ctx context.Context, request *cashregisterv1.TransferRequest) (*cashregisterv1.TransferResponse, error) {
	from, err := callerAccount(ctx)
	if err != nil {
		return nil, err
	}
	if err := server.requireNotRegister("sender", from); err != nil {
		return nil, err
	}
	to, err := token.NewAccount(request.GetTo())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	amount, err := token.NewAmount(request.GetAmount())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	record, operationError := server.tokenLedger.Transfer(ctx, from, to, amount)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.TransferResponse{Transfer: transferMessage(record)}, nil
}

func (server *TokenServer) TransferFrom(ctx context.Context, request *cashregisterv1.TransferFromRequest) (*cashregisterv1.TransferResponse, error) {
	spender, err := callerAccount(ctx)
	if err != nil {
		return nil, err
	}
	if err := server.requireNotRegister("spender", spender); err != nil {
		return nil, err
	}
	from, err := token.NewAccount(request.GetFrom())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	if err := server.requireNotRegister("sender", from); err != nil {
		return nil, err
	}
	to, err := token.NewAccount(request.GetTo())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	amount, err := token.NewAmount(request.GetAmount())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	record, operationError := server.tokenLedger.TransferFrom(ctx, spender, from, to, amount)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.TransferResponse{Transfer: transferMessage(record)}, nil
}

func (server *TokenServer) ListTransfers(ctx context.Context, request *cashregisterv1.ListTransfersRequest) (*cashregisterv1.ListTransfersResponse, error) {
	account, err := accountOrCaller(ctx, request.GetAccount())
	if err != nil {
		return nil, err
	}
	limit, err := normalizeListLimit(request.GetLimit())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	records, operationError := server.tokenLedger.Transfers(ctx, account, int(limit))
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	response := &cashregisterv1.ListTransfersResponse{Transfers: make([]*cashregisterv1.Transfer, 0, len(records))}
	for _, record := range records {
		response.Transfers = append(response.Transfers, transferMessage(record))
	}
	return response, nil
}

func transferMessage(record token.TransferRecord) *cashregisterv1.Transfer {
	return &cashregisterv1.Transfer{
		TransferId:     record.TransferID,
		Kind:           string(record.Kind),
		Spender:        record.Spender.String(),
		From:           record.From.String(),
		To:             record.To.String(),
		Amount:         record.Amount.Int64(),
		CreatedUnixUtc: record.CreatedUnixUTC,
	}
}

func callerAccount(ctx context.Context) (token.Account, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return token.Account{}, err
	}
	account, err := settlement.Account(caller)
	if err != nil {
		return token.Account{}, mapToGRPCError(err)
	}
	return account, nil
}

func accountOrCaller(ctx context.Context, raw string) (token.Account, error) {
	if raw == "" {
		return callerAccount(ctx)
	}
	account, err := token.NewAccount(raw)
	if err != nil {
		return token.Account{}, mapToGRPCError(err)
	}
	return account, nil
}
