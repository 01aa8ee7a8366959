package cashregisterv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RegisterService_ServiceName                      = "cashregister.v1.RegisterService"
	RegisterService_AddItem_FullMethodName           = "/cashregister.v1.RegisterService/AddItem"
	RegisterService_PriceOf_FullMethodName           = "/cashregister.v1.RegisterService/PriceOf"
	RegisterService_NewReceipt_FullMethodName        = "/cashregister.v1.RegisterService/NewReceipt"
	RegisterService_RingUpItem_FullMethodName        = "/cashregister.v1.RegisterService/RingUpItem"
	RegisterService_FinishReceipt_FullMethodName     = "/cashregister.v1.RegisterService/FinishReceipt"
	RegisterService_ViewReceipt_FullMethodName       = "/cashregister.v1.RegisterService/ViewReceipt"
	RegisterService_ViewBalance_FullMethodName       = "/cashregister.v1.RegisterService/ViewBalance"
	RegisterService_ClaimTokens_FullMethodName       = "/cashregister.v1.RegisterService/ClaimTokens"
	RegisterService_ListReceiptEvents_FullMethodName = "/cashregister.v1.RegisterService/ListReceiptEvents"
)

// RegisterServiceClient is the client API for RegisterService.
type RegisterServiceClient interface {
	AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*AddItemResponse, error)
	PriceOf(ctx context.Context, in *PriceOfRequest, opts ...grpc.CallOption) (*PriceOfResponse, error)
	NewReceipt(ctx context.Context, in *NewReceiptRequest, opts ...grpc.CallOption) (*NewReceiptResponse, error)
	RingUpItem(ctx context.Context, in *RingUpItemRequest, opts ...grpc.CallOption) (*ReceiptResponse, error)
	FinishReceipt(ctx context.Context, in *FinishReceiptRequest, opts ...grpc.CallOption) (*ReceiptResponse, error)
	ViewReceipt(ctx context.Context, in *ViewReceiptRequest, opts ...grpc.CallOption) (*ReceiptResponse, error)
	ViewBalance(ctx context.Context, in *ViewBalanceRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	ClaimTokens(ctx context.Context, in *ClaimTokensRequest, opts ...grpc.CallOption) (*AmountResponse, error)
	ListReceiptEvents(ctx context.Context, in *ListReceiptEventsRequest, opts ...grpc.CallOption) (*ListReceiptEventsResponse, error)
}

type registerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRegisterServiceClient returns a client that speaks the JSON codec over cc.
func NewRegisterServiceClient(cc grpc.ClientConnInterface) RegisterServiceClient {
	return &registerServiceClient{cc: cc}
}

func (client *registerServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*AddItemResponse, error) {
	return invoke[AddItemResponse](ctx, client.cc, RegisterService_AddItem_FullMethodName, in, opts)
}

func (client *registerServiceClient) PriceOf(ctx context.Context, in *PriceOfRequest, opts ...grpc.CallOption) (*PriceOfResponse, error) {
	return invoke[PriceOfResponse](ctx, client.cc, RegisterService_PriceOf_FullMethodName, in, opts)
}

func (client *registerServiceClient) NewReceipt(ctx context.Context, in *NewReceiptRequest, opts ...grpc.CallOption) (*NewReceiptResponse, error) {
	return invoke[NewReceiptResponse](ctx, client.cc, RegisterService_NewReceipt_FullMethodName, in, opts)
}

func (client *registerServiceClient) RingUpItem(ctx context.Context, in *RingUpItemRequest, opts ...grpc.CallOption) (*ReceiptResponse, error) {
	return invoke[ReceiptResponse](ctx, client.cc, RegisterService_RingUpItem_FullMethodName, in, opts)
}

func (client *registerServiceClient) FinishReceipt(ctx context.Context, in *FinishReceiptRequest, opts ...grpc.CallOption) (*ReceiptResponse, error) {
	return invoke[ReceiptResponse](ctx, client.cc, RegisterService_FinishReceipt_FullMethodName, in, opts)
}

func (client *registerServiceClient) ViewReceipt(ctx context.Context, in *ViewReceiptRequest, opts ...grpc.CallOption) (*ReceiptResponse, error) {
	return invoke[ReceiptResponse](ctx, client.cc, RegisterService_ViewReceipt_FullMethodName, in, opts)
}

func (client *registerServiceClient) ViewBalance(ctx context.Context, in *ViewBalanceRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, client.cc, RegisterService_ViewBalance_FullMethodName, in, opts)
}

func (client *registerServiceClient) ClaimTokens(ctx context.Context, in *ClaimTokensRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, client.cc, RegisterService_ClaimTokens_FullMethodName, in, opts)
}

func (client *registerServiceClient) ListReceiptEvents(ctx context.Context, in *ListReceiptEventsRequest, opts ...grpc.CallOption) (*ListReceiptEventsResponse, error) {
	return invoke[ListReceiptEventsResponse](ctx, client.cc, RegisterService_ListReceiptEvents_FullMethodName, in, opts)
}

// RegisterServiceServer is the server API for RegisterService.
type RegisterServiceServer interface {
	AddItem(context.Context, *AddItemRequest) (*AddItemResponse, error)
	PriceOf(context.Context, *PriceOfRequest) (*PriceOfResponse, error)
	NewReceipt(context.Context, *NewReceiptRequest) (*NewReceiptResponse, error)
	RingUpItem(context.Context, *RingUpItemRequest) (*ReceiptResponse, error)
	FinishReceipt(context.Context, *FinishReceiptRequest) (*ReceiptResponse, error)
	ViewReceipt(context.Context, *ViewReceiptRequest) (*ReceiptResponse, error)
	ViewBalance(context.Context, *ViewBalanceRequest) (*AmountResponse, error)
	ClaimTokens(context.Context, *ClaimTokensRequest) (*AmountResponse, error)
	ListReceiptEvents(context.Context, *ListReceiptEventsRequest) (*ListReceiptEventsResponse, error)
}

// UnimplementedRegisterServiceServer answers every RegisterService method with codes.Unimplemented.
type UnimplementedRegisterServiceServer struct{}

func (UnimplementedRegisterServiceServer) AddItem(context.Context, *AddItemRequest) (*AddItemResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddItem not implemented")
}

func (UnimplementedRegisterServiceServer) PriceOf(context.Context, *PriceOfRequest) (*PriceOfResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PriceOf not implemented")
}

func (UnimplementedRegisterServiceServer) NewReceipt(context.Context, *NewReceiptRequest) (*NewReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method NewReceipt not implemented")
}

func (UnimplementedRegisterServiceServer) RingUpItem(context.Context, *RingUpItemRequest) (*ReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RingUpItem not implemented")
}

func (UnimplementedRegisterServiceServer) FinishReceipt(context.Context, *FinishReceiptRequest) (*ReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FinishReceipt not implemented")
}

func (UnimplementedRegisterServiceServer) ViewReceipt(context.Context, *ViewReceiptRequest) (*ReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ViewReceipt not implemented")
}

func (UnimplementedRegisterServiceServer) ViewBalance(context.Context, *ViewBalanceRequest) (*AmountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ViewBalance not implemented")
}

func (UnimplementedRegisterServiceServer) ClaimTokens(context.Context, *ClaimTokensRequest) (*AmountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClaimTokens not implemented")
}

func (UnimplementedRegisterServiceServer) ListReceiptEvents(context.Context, *ListReceiptEventsRequest) (*ListReceiptEventsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListReceiptEvents not implemented")
}

// RegisterService_ServiceDesc describes RegisterService for grpc.ServiceRegistrar.
var RegisterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: RegisterService_ServiceName,
	HandlerType: (*RegisterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddItem", Handler: unaryHandler(RegisterService_AddItem_FullMethodName, RegisterServiceServer.AddItem)},
		{MethodName: "PriceOf", Handler: unaryHandler(RegisterService_PriceOf_FullMethodName, RegisterServiceServer.PriceOf)},
		{MethodName: "NewReceipt", Handler: unaryHandler(RegisterService_NewReceipt_FullMethodName, RegisterServiceServer.NewReceipt)},
		{MethodName: "RingUpItem", Handler: unaryHandler(RegisterService_RingUpItem_FullMethodName, RegisterServiceServer.RingUpItem)},
		{MethodName: "FinishReceipt", Handler: unaryHandler(RegisterService_FinishReceipt_FullMethodName, RegisterServiceServer.FinishReceipt)},
		{MethodName: "ViewReceipt", Handler: unaryHandler(RegisterService_ViewReceipt_FullMethodName, RegisterServiceServer.ViewReceipt)},
		{MethodName: "ViewBalance", Handler: unaryHandler(RegisterService_ViewBalance_FullMethodName, RegisterServiceServer.ViewBalance)},
		{MethodName: "ClaimTokens", Handler: unaryHandler(RegisterService_ClaimTokens_FullMethodName, RegisterServiceServer.ClaimTokens)},
		{MethodName: "ListReceiptEvents", Handler: unaryHandler(RegisterService_ListReceiptEvents_FullMethodName, RegisterServiceServer.ListReceiptEvents)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/cashregister/v1/register_grpc.go",
}

// RegisterRegisterServiceServer attaches srv to registrar.
func RegisterRegisterServiceServer(registrar grpc.ServiceRegistrar, srv RegisterServiceServer) {
	registrar.RegisterService(&RegisterService_ServiceDesc, srv)
}
