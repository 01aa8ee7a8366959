package cashregisterv1

// Receipt is the wire form of a register receipt.
type Receipt struct {
	ReceiptId  int64  `json:"receiptId"`
	Purchaser  string `json:"purchaser"`
	TotalPrice int64  `json:"totalPrice"`
	Finished   bool   `json:"finished"`
	Status     string `json:"status"`
}

func (receipt *Receipt) GetReceiptId() int64 {
	if receipt == nil {
		return 0
	}
	return receipt.ReceiptId
}

func (receipt *Receipt) GetPurchaser() string {
	if receipt == nil {
		return ""
	}
	return receipt.Purchaser
}

func (receipt *Receipt) GetTotalPrice() int64 {
	if receipt == nil {
		return 0
	}
	return receipt.TotalPrice
}

func (receipt *Receipt) GetFinished() bool {
	if receipt == nil {
		return false
	}
	return receipt.Finished
}

func (receipt *Receipt) GetStatus() string {
	if receipt == nil {
		return ""
	}
	return receipt.Status
}

type AddItemRequest struct {
	ItemId string `json:"itemId"`
	Price  int64  `json:"price"`
}

func (request *AddItemRequest) GetItemId() string {
	if request == nil {
		return ""
	}
	return request.ItemId
}

func (request *AddItemRequest) GetPrice() int64 {
	if request == nil {
		return 0
	}
	return request.Price
}

type AddItemResponse struct{}

type PriceOfRequest struct {
	ItemId string `json:"itemId"`
}

func (request *PriceOfRequest) GetItemId() string {
	if request == nil {
		return ""
	}
	return request.ItemId
}

type PriceOfResponse struct {
	Price int64 `json:"price"`
	Found bool  `json:"found"`
}

func (response *PriceOfResponse) GetPrice() int64 {
	if response == nil {
		return 0
	}
	return response.Price
}

func (response *PriceOfResponse) GetFound() bool {
	if response == nil {
		return false
	}
	return response.Found
}

// NewReceiptRequest opens a receipt. An empty Purchaser means the caller.
type NewReceiptRequest struct {
	Purchaser string `json:"purchaser,omitempty"`
}

func (request *NewReceiptRequest) GetPurchaser() string {
	if request == nil {
		return ""
	}
	return request.Purchaser
}

type NewReceiptResponse struct {
	ReceiptId int64 `json:"receiptId"`
}

func (response *NewReceiptResponse) GetReceiptId() int64 {
	if response == nil {
		return 0
	}
	return response.ReceiptId
}

type RingUpItemRequest struct {
	ReceiptId int64  `json:"receiptId"`
	ItemId    string `json:"itemId"`
}

func (request *RingUpItemRequest) GetReceiptId() int64 {
	if request == nil {
		return 0
	}
	return request.ReceiptId
}

func (request *RingUpItemRequest) GetItemId() string {
	if request == nil {
		return ""
	}
	return request.ItemId
}

type FinishReceiptRequest struct {
	ReceiptId int64 `json:"receiptId"`
}

func (request *FinishReceiptRequest) GetReceiptId() int64 {
	if request == nil {
		return 0
	}
	return request.ReceiptId
}

type ViewReceiptRequest struct {
	ReceiptId int64 `json:"receiptId"`
}

func (request *ViewReceiptRequest) GetReceiptId() int64 {
	if request == nil {
		return 0
	}
	return request.ReceiptId
}

type ReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

func (response *ReceiptResponse) GetReceipt() *Receipt {
	if response == nil {
		return nil
	}
	return response.Receipt
}

type ViewBalanceRequest struct{}

type ClaimTokensRequest struct{}

type AmountResponse struct {
	Amount int64 `json:"amount"`
}

func (response *AmountResponse) GetAmount() int64 {
	if response == nil {
		return 0
	}
	return response.Amount
}

type ListReceiptEventsRequest struct {
	AfterReceiptId int64 `json:"afterReceiptId"`
	Limit          int32 `json:"limit"`
}

func (request *ListReceiptEventsRequest) GetAfterReceiptId() int64 {
	if request == nil {
		return 0
	}
	return request.AfterReceiptId
}

func (request *ListReceiptEventsRequest) GetLimit() int32 {
	if request == nil {
		return 0
	}
	return request.Limit
}

type ReceiptCreatedEvent struct {
	Purchaser      string `json:"purchaser"`
	ReceiptId      int64  `json:"receiptId"`
	CreatedUnixUtc int64  `json:"createdUnixUtc"`
}

func (event *ReceiptCreatedEvent) GetPurchaser() string {
	if event == nil {
		return ""
	}
	return event.Purchaser
}

func (event *ReceiptCreatedEvent) GetReceiptId() int64 {
	if event == nil {
		return 0
	}
	return event.ReceiptId
}

func (event *ReceiptCreatedEvent) GetCreatedUnixUtc() int64 {
	if event == nil {
		return 0
	}
	return event.CreatedUnixUtc
}

type ListReceiptEventsResponse struct {
	Events []*ReceiptCreatedEvent `json:"events"`
}

func (response *ListReceiptEventsResponse) GetEvents() []*ReceiptCreatedEvent {
	if response == nil {
		return nil
	}
	return response.Events
}

type TokenInfoRequest struct{}

type TokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int32  `json:"decimals"`
	TotalSupply int64  `json:"totalSupply"`
}

func (response *TokenInfoResponse) GetName() string {
	if response == nil {
		return ""
	}
	return response.Name
}

func (response *TokenInfoResponse) GetSymbol() string {
	if response == nil {
		return ""
	}
	return response.Symbol
}

func (response *TokenInfoResponse) GetDecimals() int32 {
	if response == nil {
		return 0
	}
	return response.Decimals
}

func (response *TokenInfoResponse) GetTotalSupply() int64 {
	if response == nil {
		return 0
	}
	return response.TotalSupply
}

// BalanceOfRequest reads a balance. An empty Account means the caller.
type BalanceOfRequest struct {
	Account string `json:"account,omitempty"`
}

func (request *BalanceOfRequest) GetAccount() string {
	if request == nil {
		return ""
	}
	return request.Account
}

// AllowanceRequest reads an allowance. An empty Owner means the caller.
type AllowanceRequest struct {
	Owner   string `json:"owner,omitempty"`
	Spender string `json:"spender"`
}

func (request *AllowanceRequest) GetOwner() string {
	if request == nil {
		return ""
	}
	return request.Owner
}

func (request *AllowanceRequest) GetSpender() string {
	if request == nil {
		return ""
	}
	return request.Spender
}

// ApproveRequest sets the caller's allowance for Spender.
type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

func (request *ApproveRequest) GetSpender() string {
	if request == nil {
		return ""
	}
	return request.Spender
}

func (request *ApproveRequest) GetAmount() int64 {
	if request == nil {
		return 0
	}
	return request.Amount
}

type ApproveResponse struct{}

// TransferRequest moves tokens out of the caller's balance.
type TransferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (request *TransferRequest) GetTo() string {
	if request == nil {
		return ""
	}
	return request.To
}

func (request *TransferRequest) GetAmount() int64 {
	if request == nil {
		return 0
	}
	return request.Amount
}

// TransferFromRequest moves tokens out of From's balance using the caller's allowance.
type TransferFromRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

func (request *TransferFromRequest) GetFrom() string {
	if request == nil {
		return ""
	}
	return request.From
}

func (request *TransferFromRequest) GetTo() string {
	if request == nil {
		return ""
	}
	return request.To
}

func (request *TransferFromRequest) GetAmount() int64 {
	if request == nil {
		return 0
	}
	return request.Amount
}

type Transfer struct {
	TransferId     string `json:"transferId"`
	Kind           string `json:"kind"`
	Spender        string `json:"spender,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	CreatedUnixUtc int64  `json:"createdUnixUtc"`
}

func (transfer *Transfer) GetTransferId() string {
	if transfer == nil {
		return ""
	}
	return transfer.TransferId
}

func (transfer *Transfer) GetKind() string {
	if transfer == nil {
		return ""
	}
	return transfer.Kind
}

func (transfer *Transfer) GetSpender() string {
	if transfer == nil {
		return ""
	}
	return transfer.Spender
}

func (transfer *Transfer) GetFrom() string {
	if transfer == nil {
		return ""
	}
	return transfer.From
}

func (transfer *Transfer) GetTo() string {
	if transfer == nil {
		return ""
	}
	return transfer.To
}

func (transfer *Transfer) GetAmount() int64 {
	if transfer == nil {
		return 0
	}
	return transfer.Amount
}

func (transfer *Transfer) GetCreatedUnixUtc() int64 {
	if transfer == nil {
		return 0
	}
	return transfer.CreatedUnixUtc
}

type TransferResponse struct {
	Transfer *Transfer `json:"transfer"`
}

func (response *TransferResponse) GetTransfer() *Transfer {
	if response == nil {
		return nil
	}
	return response.Transfer
}

// ListTransfersRequest pages the journal. An empty Account means the caller.
type ListTransfersRequest struct {
	Account string `json:"account,omitempty"`
	Limit   int32  `json:"limit"`
}

func (request *ListTransfersRequest) GetAccount() string {
	if request == nil {
		return ""
	}
	return request.Account
}

func (request *ListTransfersRequest) GetLimit() int32 {
	if request == nil {
		return 0
	}
	return request.Limit
}

type ListTransfersResponse struct {
	Transfers []*Transfer `json:"transfers"`
}

func (response *ListTransfersResponse) GetTransfers() []*Transfer {
	if response == nil {
		return nil
	}
	return response.Transfers
}
