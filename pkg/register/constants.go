package register

const (
	operationAddItem       = "add_item"
	operationNewReceipt    = "new_receipt"
	operationRingUpItem    = "ring_up_item"
	operationFinishReceipt = "finish_receipt"
	operationClaimTokens   = "claim_tokens"
	operationCompensate    = "compensate_settlement"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	errorOperationService = "service"
	errorSubjectReceipt   = "receipt"
	errorSubjectRegister  = "register"
	errorCodeSettle       = "settle"
	errorCodeCompensate   = "compensate"
	errorCodeOverflow     = "total_overflow"
	errorCodeClaim        = "claim"

	// FirstReceiptID is the first identifier handed out by a fresh store.
	FirstReceiptID int64 = 1
)
