package cashregisterv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TokenService_ServiceName                  = "cashregister.v1.TokenService"
	TokenService_TokenInfo_FullMethodName     = "/cashregister.v1.TokenService/TokenInfo"
	TokenService_BalanceOf_FullMethodName     = "/cashregister.v1.TokenService/BalanceOf"
	TokenService_Allowance_FullMethodName     = "/cashregister.v1.TokenService/Allowance"
	TokenService_Approve_FullMethodName       = "/cashregister.v1.TokenService/Approve"
	TokenService_Transfer_FullMethodName      = "/cashregister.v1.TokenService/Transfer"
	TokenService_TransferFrom_FullMethodName  = "/cashregister.v1.TokenService/TransferFrom"
	TokenService_ListTransfers_FullMethodName = "/cashregister.v1.TokenService/ListTransfers"
)

// TokenServiceClient is the client API for TokenService.
type TokenServiceClient interface {
	TokenInfo(ctx context.Context, in *TokenInfoRequest, opts ...grpc.CallOption) (*TokenInfoResponse, error)
	BalanceOf(ctx context.Context, in *BalanceOfRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	Allowance(ctx context.Context, in *AllowanceRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	Approve(ctx context.Context, in *ApproveRequest, opts ...grpc.CallOption) (*ApproveResponse, error)
	Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	TransferFrom(ctx context.Context, in *TransferFromRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	ListTransfers(ctx context.Context, in *ListTransfersRequest, opts ...grpc.CallOption) (*ListTransfersResponse, error)
}

type tokenServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenServiceClient returns a client that speaks the JSON codec over cc.
func NewTokenServiceClient(cc grpc.ClientConnInterface) TokenServiceClient {
	return &tokenServiceClient{cc: cc}
}

func (client *tokenServiceClient) TokenInfo(ctx context.Context, in *TokenInfoRequest, opts ...grpc.CallOption) (*TokenInfoResponse, error) {
	return invoke[TokenInfoResponse](ctx, client.cc, TokenService_TokenInfo_FullMethodName, in, opts)
}

func (client *tokenServiceClient) BalanceOf(ctx context.Context, in *BalanceOfRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, client.cc, TokenService_BalanceOf_FullMethodName, in, opts)
}

func (client *tokenServiceClient) Allowance(ctx context.Context, in *AllowanceRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, client.cc, TokenService_Allowance_FullMethodName, in, opts)
}

func (client *tokenServiceClient) Approve(ctx context.Context, in *ApproveRequest, opts ...grpc.CallOption) (*ApproveResponse, error) {
	return invoke[ApproveResponse](ctx, client.cc, TokenService_Approve_FullMethodName, in, opts)
}

func (client *tokenServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, client.cc, TokenService_Transfer_FullMethodName, in, opts)
}

func (client *tokenServiceClient) TransferFrom(ctx context.Context, in *TransferFromRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, client.cc, TokenService_TransferFrom_FullMethodName, in, opts)
}

func (client *tokenServiceClient) ListTransfers(ctx context.Context, in *ListTransfersRequest, opts ...grpc.CallOption) (*ListTransfersResponse, error) {
	return invoke[ListTransfersResponse](ctx, client.cc, TokenService_ListTransfers_FullMethodName, in, opts)
}

// TokenServiceServer is the server API for TokenService.
type TokenServiceServer interface {
	TokenInfo(context.Context, *TokenInfoRequest) (*TokenInfoResponse, error)
	BalanceOf(context.Context, *BalanceOfRequest) (*AmountResponse, error)
	Allowance(context.Context, *AllowanceRequest) (*AmountResponse, error)
	Approve(context.Context, *ApproveRequest) (*ApproveResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	TransferFrom(context.Context, *TransferFromRequest) (*TransferResponse, error)
	ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error)
}

// UnimplementedTokenServiceServer answers every TokenService method with codes.Unimplemented.
type UnimplementedTokenServiceServer struct{}

func (UnimplementedTokenServiceServer) TokenInfo(context.Context, *TokenInfoRequest) (*TokenInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TokenInfo not implemented")
}

func (UnimplementedTokenServiceServer) BalanceOf(context.Context, *BalanceOfRequest) (*AmountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BalanceOf not implemented")
}

func (UnimplementedTokenServiceServer) Allowance(context.Context, *AllowanceRequest) (*AmountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Allowance not implemented")
}

func (UnimplementedTokenServiceServer) Approve(context.Context, *ApproveRequest) (*ApproveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Approve not implemented")
}

func (UnimplementedTokenServiceServer) Transfer(context.Context, *TransferRequest) (*TransferResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Transfer not implemented")
}

func (UnimplementedTokenServiceServer) TransferFrom(context.Context, *TransferFromRequest) (*TransferResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TransferFrom not implemented")
}

func (UnimplementedTokenServiceServer) ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTransfers not implemented")
}

// TokenService_ServiceDesc describes TokenService for grpc.ServiceRegistrar.
var TokenService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TokenService_ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TokenInfo", Handler: unaryHandler(TokenService_TokenInfo_FullMethodName, TokenServiceServer.TokenInfo)},
		{MethodName: "BalanceOf", Handler: unaryHandler(TokenService_BalanceOf_FullMethodName, TokenServiceServer.BalanceOf)},
		{MethodName: "Allowance", Handler: unaryHandler(TokenService_Allowance_FullMethodName, TokenServiceServer.Allowance)},
		{MethodName: "Approve", Handler: unaryHandler(TokenService_Approve_FullMethodName, TokenServiceServer.Approve)},
		{MethodName: "Transfer", Handler: unaryHandler(TokenService_Transfer_FullMethodName, TokenServiceServer.Transfer)},
		{MethodName: "TransferFrom", Handler: unaryHandler(TokenService_TransferFrom_FullMethodName, TokenServiceServer.TransferFrom)},
		{MethodName: "ListTransfers", Handler: unaryHandler(TokenService_ListTransfers_FullMethodName, TokenServiceServer.ListTransfers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/cashregister/v1/token_grpc.go",
}

// RegisterTokenServiceServer attaches srv to registrar.
func RegisterTokenServiceServer(registrar grpc.ServiceRegistrar, srv TokenServiceServer) {
	registrar.RegisterService(&TokenService_ServiceDesc, srv)
}
