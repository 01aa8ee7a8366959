package grpcserver

import (
	"context"

	"github.com/MarkoPoloResearchLab/cashregister/api/cashregister/v1"
	"github.com/MarkoPoloResearchLab/cashregister/internal/auth"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"google.golang.org/grpc/codes"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RegisterServer exposes the catalog and receipt ledger over gRPC.
type RegisterServer struct {
	cashregisterv1.UnimplementedRegisterServiceServer
	registerService *register.Service
}

// NewRegisterServer constructs a gRPC server for the register service.
func NewRegisterServer(registerService *register.Service) *RegisterServer {
	return &RegisterServer{registerService: registerService}
}

func (server *RegisterServer) AddItem(ctx context.Context, request *cashregisterv1.AddItemRequest) (*cashregisterv1.AddItemResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	itemID, err := register.NewItemID(request.GetItemId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	price, err := register.NewPrice(request.GetPrice())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	if operationError := server.registerService.AddItem(ctx, caller, itemID, price); operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.AddItemResponse{}, nil
}

func (server *RegisterServer) PriceOf(ctx context.Context, request *cashregisterv1.PriceOfRequest) (*cashregisterv1.PriceOfResponse, error) {
	itemID, err := register.NewItemID(request.GetItemId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	price, found, operationError := server.registerService.LookupPrice(ctx, itemID)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.PriceOfResponse{Price: price.Int64(), Found: found}, nil
}

func (server *RegisterServer) NewReceipt(ctx context.Context, request *cashregisterv1.NewReceiptRequest) (*cashregisterv1.NewReceiptResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	purchaser := caller
	if request.GetPurchaser() != "" {
		purchaser, err = register.NewPrincipal(request.GetPurchaser())
		if err != nil {
			return nil, mapToGRPCError(err)
		}
	}
	receiptID, operationError := server.registerService.NewReceipt(ctx, caller, purchaser)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.NewReceiptResponse{ReceiptId: receiptID.Int64()}, nil
}

func (server *RegisterServer) RingUpItem(ctx context.Context, request *cashregisterv1.RingUpItemRequest) (*cashregisterv1.ReceiptResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	receiptID, err := register.NewReceiptID(request.GetReceiptId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	itemID, err := register.NewItemID(request.GetItemId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	receipt, operationError := server.registerService.RingUpItem(ctx, caller, receiptID, itemID)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.ReceiptResponse{Receipt: receiptMessage(receipt)}, nil
}

func (server *RegisterServer) FinishReceipt(ctx context.Context, request *cashregisterv1.FinishReceiptRequest) (*cashregisterv1.ReceiptResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	receiptID, err := register.NewReceiptID(request.GetReceiptId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	receipt, operationError := server.registerService.FinishReceipt(ctx, caller, receiptID)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.ReceiptResponse{Receipt: receiptMessage(receipt)}, nil
}

func (server *RegisterServer) ViewReceipt(ctx context.Context, request *cashregisterv1.ViewReceiptRequest) (*cashregisterv1.ReceiptResponse, error) {
	receiptID, err := register.NewReceiptID(request.GetReceiptId())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	receipt, operationError := server.registerService.ViewReceipt(ctx, receiptID)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.ReceiptResponse{Receipt: receiptMessage(receipt)}, nil
}

func (server *RegisterServer) ViewBalance(ctx context.Context, _ *cashregisterv1.ViewBalanceRequest) (*cashregisterv1.AmountResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	balance, operationError := server.registerService.ViewBalance(ctx, caller)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.AmountResponse{Amount: balance.Int64()}, nil
}

func (server *RegisterServer) ClaimTokens(ctx context.Context, _ *cashregisterv1.ClaimTokensRequest) (*cashregisterv1.AmountResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	claimed, operationError := server.registerService.ClaimTokens(ctx, caller)
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	return &cashregisterv1.AmountResponse{Amount: claimed.Int64()}, nil
}

func (server *RegisterServer) ListReceiptEvents(ctx context.Context, request *cashregisterv1.ListReceiptEventsRequest) (*cashregisterv1.ListReceiptEventsResponse, error) {
	limit, err := normalizeListLimit(request.GetLimit())
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	events, operationError := server.registerService.ReceiptEvents(ctx, request.GetAfterReceiptId(), int(limit))
	if operationError != nil {
		return nil, mapToGRPCError(operationError)
	}
	response := &cashregisterv1.ListReceiptEventsResponse{Events: make([]*cashregisterv1.ReceiptCreatedEvent, 0, len(events))}
	for _, event := range events {
		response.Events = append(response.Events, &cashregisterv1.ReceiptCreatedEvent{
			Purchaser:      event.Purchaser.String(),
			ReceiptId:      event.ReceiptID.Int64(),
			CreatedUnixUtc: event.CreatedUnixUTC,
		})
	}
	return response, nil
}

func receiptMessage(receipt register.Receipt) *cashregisterv1.Receipt {
	return &cashregisterv1.Receipt{
		ReceiptId:  receipt.ReceiptID().Int64(),
		Purchaser:  receipt.Purchaser().String(),
		TotalPrice: receipt.TotalPrice().Int64(),
		Finished:   receipt.Finished(),
		Status:     receipt.Status().String(),
	}
}

func callerFromContext(ctx context.Context) (register.Principal, error) {
	caller, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return register.Principal{}, statusError(codes.Unauthenticated, errorUnauthenticated)
	}
	return caller, nil
}

func normalizeListLimit(limit int32) (int32, error) {
	if limit <= 0 {
		return defaultListLimit, nil
	}
	if limit > maxListLimit {
		return 0, invalidListLimit(limit, maxListLimit)
	}
	return limit, nil
}
