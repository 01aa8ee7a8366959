package token

const (
	operationMint         = "mint"
	operationApprove      = "approve"
	operationTransfer     = "transfer"
	operationTransferFrom = "transfer_from"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	maxTransfersLimit = 500

	// DefaultName, DefaultSymbol and DefaultDecimals describe the settlement token used by the register.
	DefaultName     = "gribcash"
	DefaultSymbol   = "GRC"
	DefaultDecimals = 18
)
