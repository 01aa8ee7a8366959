package grpcserver

import (
	"errors"
	"fmt"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	errorDomain = "cashregister"

	errorUnauthorized          = "unauthorized"
	errorUnauthenticated       = "unauthenticated"
	errorReceiptNotFound       = "receipt_not_found"
	errorReceiptFinalized      = "receipt_finalized"
	errorReceiptConflict       = "receipt_conflict"
	errorSettlementFailed      = "settlement_failed"
	errorInsufficientBalance   = "insufficient_balance"
	errorInsufficientAllowance = "insufficient_allowance"
	errorBalanceOverflow       = "balance_overflow"
	errorSupplyAlreadyMinted   = "supply_already_minted"
	errorInvalidPrincipal      = "invalid_principal"
	errorInvalidItemID         = "invalid_item_id"
	errorInvalidPrice          = "invalid_price"
	errorInvalidAmount         = "invalid_amount"
	errorInvalidReceiptID      = "invalid_receipt_id"
	errorInvalidAccount        = "invalid_account"
	errorInvalidListLimit      = "invalid_list_limit"
	errorInternal              = "internal"
)

type errorMapping struct {
	target error
	code   codes.Code
	reason string
}

// Order matters: a settlement failure also wraps the token cause, so it is matched first.
var errorMappings = []errorMapping{
	{target: register.ErrUnauthorized, code: codes.PermissionDenied, reason: errorUnauthorized},
	{target: register.ErrReceiptNotFound, code: codes.NotFound, reason: errorReceiptNotFound},
	{target: register.ErrReceiptFinalized, code: codes.FailedPrecondition, reason: errorReceiptFinalized},
	{target: register.ErrReceiptConflict, code: codes.Aborted, reason: errorReceiptConflict},
	{target: register.ErrSettlementFailed, code: codes.FailedPrecondition, reason: errorSettlementFailed},
	{target: token.ErrInsufficientBalance, code: codes.FailedPrecondition, reason: errorInsufficientBalance},
	{target: token.ErrInsufficientAllowance, code: codes.FailedPrecondition, reason: errorInsufficientAllowance},
	{target: token.ErrBalanceOverflow, code: codes.FailedPrecondition, reason: errorBalanceOverflow},
	{target: token.ErrSupplyAlreadyMinted, code: codes.AlreadyExists, reason: errorSupplyAlreadyMinted},
	{target: register.ErrInvalidPrincipal, code: codes.InvalidArgument, reason: errorInvalidPrincipal},
	{target: register.ErrInvalidItemID, code: codes.InvalidArgument, reason: errorInvalidItemID},
	{target: register.ErrInvalidPrice, code: codes.InvalidArgument, reason: errorInvalidPrice},
	{target: register.ErrInvalidAmount, code: codes.InvalidArgument, reason: errorInvalidAmount},
	{target: register.ErrInvalidReceiptID, code: codes.InvalidArgument, reason: errorInvalidReceiptID},
	{target: register.ErrInvalidListLimit, code: codes.InvalidArgument, reason: errorInvalidListLimit},
	{target: token.ErrInvalidAccount, code: codes.InvalidArgument, reason: errorInvalidAccount},
	{target: token.ErrInvalidAmount, code: codes.InvalidArgument, reason: errorInvalidAmount},
	{target: token.ErrInvalidListLimit, code: codes.InvalidArgument, reason: errorInvalidListLimit},
}

func mapToGRPCError(source error) error {
	for _, mapping := range errorMappings {
		if errors.Is(source, mapping.target) {
			return statusError(mapping.code, mapping.reason)
		}
	}
	return statusError(codes.Internal, errorInternal)
}

// statusError returns a status whose message is the stable reason, with an ErrorInfo detail carrying the same reason.
func statusError(code codes.Code, reason string) error {
	base := status.New(code, reason)
	detailed, err := base.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain})
	if err != nil {
		return base.Err()
	}
	return detailed.Err()
}

// ErrorReason extracts the ErrorInfo reason from a status error, falling back to the status message.
func ErrorReason(err error) string {
	statusInfo, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, detail := range statusInfo.Details() {
		if info, isInfo := detail.(*errdetails.ErrorInfo); isInfo && info.GetDomain() == errorDomain {
			return info.GetReason()
		}
	}
	return statusInfo.Message()
}

func invalidListLimit(limit int32, maximum int32) error {
	return fmt.Errorf("%w: limit exceeds maximum: %d > %d", register.ErrInvalidListLimit, limit, maximum)
}
