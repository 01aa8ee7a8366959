// Package registerapi is the browser-facing HTTP façade over the register gRPC services.
package registerapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MarkoPoloResearchLab/cashregister/api/cashregister/v1"
	"github.com/MarkoPoloResearchLab/cashregister/internal/auth"
	"github.com/MarkoPoloResearchLab/cashregister/internal/grpcserver"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const claimsKey = "auth_claims"

// Run boots the HTTP façade using the supplied configuration.
func Run(ctx context.Context, cfg Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("zap init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dialOptions := []grpc.DialOption{}
	if cfg.RegisterInsecure {
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		dialOptions = append(dialOptions, grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}
	conn, err := grpc.NewClient(cfg.RegisterAddress, dialOptions...)
	if err != nil {
		return fmt.Errorf("connect register: %w", err)
	}
	conn.Connect()
	if err := waitForClientReady(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("connect register: %w", err)
	}
	defer conn.Close()

	sessionValidator, err := sessionvalidator.New(sessionvalidator.Config{
		SigningKey: []byte(cfg.SessionSigningKey),
		Issuer:     cfg.SessionIssuer,
		CookieName: cfg.SessionCookieName,
	})
	if err != nil {
		return fmt.Errorf("session validator: %w", err)
	}
	handler, err := newHTTPHandler(cfg, logger, conn)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: setupRouter(cfg, handler, sessionValidator),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("registerapi listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler, validator *sessionvalidator.Validator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(validator.GinMiddleware(claimsKey))

	api.GET("/session", handler.handleSession)
	api.GET("/catalog/:item", handler.handlePriceOf)
	api.PUT("/catalog/:item", handler.handleAddItem)
	api.POST("/receipts", handler.handleNewReceipt)
	api.GET("/receipts/:id", handler.handleViewReceipt)
	api.POST("/receipts/:id/items", handler.handleRingUpItem)
	api.POST("/receipts/:id/finish", handler.handleFinishReceipt)
	api.GET("/register/balance", handler.handleRegisterBalance)
	api.POST("/register/claim", handler.handleClaim)
	api.GET("/wallet", handler.handleWallet)
	api.POST("/wallet/approve", handler.handleApprove)
	api.POST("/wallet/transfer", handler.handleTransfer)

	return router
}

type httpHandler struct {
	logger         *zap.Logger
	registerClient cashregisterv1.RegisterServiceClient
	tokenClient    cashregisterv1.TokenServiceClient
	issuer         *auth.Issuer
	cfg            Config

	decimalsMu sync.Mutex
	decimals   *int32
}

func newHTTPHandler(cfg Config, logger *zap.Logger, conn grpc.ClientConnInterface) (*httpHandler, error) {
	issuer, err := auth.NewIssuer(auth.Config{SigningKey: []byte(cfg.ServiceSigningKey), Issuer: cfg.ServiceIssuer})
	if err != nil {
		return nil, fmt.Errorf("service token issuer: %w", err)
	}
	return &httpHandler{
		logger:         logger,
		registerClient: cashregisterv1.NewRegisterServiceClient(conn),
		tokenClient:    cashregisterv1.NewTokenServiceClient(conn),
		issuer:         issuer,
		cfg:            cfg,
	}, nil
}

func (handler *httpHandler) handleSession(ctx *gin.Context) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"user_id":    claims.GetUserID(),
		"email":      claims.GetUserEmail(),
		"display":    claims.GetUserDisplayName(),
		"avatar_url": claims.GetUserAvatarURL(),
		"roles":      claims.GetUserRoles(),
		"expires":    claims.GetExpiresAt().Unix(),
	})
}

func (handler *httpHandler) handlePriceOf(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	itemID := ctx.Param("item")
	response, err := handler.registerClient.PriceOf(requestCtx, &cashregisterv1.PriceOfRequest{ItemId: itemID}, callOption)
	if err != nil {
		handler.respondError(ctx, "price lookup failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"item_id": itemID, "price": response.GetPrice(), "found": response.GetFound()})
}

func (handler *httpHandler) handleAddItem(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	var request priceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Price == nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with price"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	itemID := ctx.Param("item")
	if _, err := handler.registerClient.AddItem(requestCtx, &cashregisterv1.AddItemRequest{ItemId: itemID, Price: *request.Price}, callOption); err != nil {
		handler.respondError(ctx, "add item failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"item_id": itemID, "price": *request.Price, "found": true})
}

func (handler *httpHandler) handleNewReceipt(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	var request newReceiptRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	opened, err := handler.registerClient.NewReceipt(requestCtx, &cashregisterv1.NewReceiptRequest{Purchaser: request.Purchaser}, callOption)
	if err != nil {
		handler.respondError(ctx, "new receipt failed", err)
		return
	}
	viewed, err := handler.registerClient.ViewReceipt(requestCtx, &cashregisterv1.ViewReceiptRequest{ReceiptId: opened.GetReceiptId()}, callOption)
	if err != nil {
		handler.respondError(ctx, "view receipt failed", err)
		return
	}
	handler.respondWithReceipt(ctx, http.StatusCreated, viewed.GetReceipt())
}

func (handler *httpHandler) handleViewReceipt(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	receiptID, ok := receiptIDParam(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	viewed, err := handler.registerClient.ViewReceipt(requestCtx, &cashregisterv1.ViewReceiptRequest{ReceiptId: receiptID}, callOption)
	if err != nil {
		handler.respondError(ctx, "view receipt failed", err)
		return
	}
	handler.respondWithReceipt(ctx, http.StatusOK, viewed.GetReceipt())
}

func (handler *httpHandler) handleRingUpItem(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	receiptID, ok := receiptIDParam(ctx)
	if !ok {
		return
	}
	var request ringUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.ItemID == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with item_id"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	rungUp, err := handler.registerClient.RingUpItem(requestCtx, &cashregisterv1.RingUpItemRequest{ReceiptId: receiptID, ItemId: request.ItemID}, callOption)
	if err != nil {
		handler.respondError(ctx, "ring up failed", err)
		return
	}
	handler.respondWithReceipt(ctx, http.StatusOK, rungUp.GetReceipt())
}

func (handler *httpHandler) handleFinishReceipt(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	receiptID, ok := receiptIDParam(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	finished, err := handler.registerClient.FinishReceipt(requestCtx, &cashregisterv1.FinishReceiptRequest{ReceiptId: receiptID}, callOption)
	if err != nil {
		handler.respondError(ctx, "finish receipt failed", err)
		return
	}
	handler.respondWithReceipt(ctx, http.StatusOK, finished.GetReceipt())
}

func (handler *httpHandler) handleRegisterBalance(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	balance, err := handler.registerClient.ViewBalance(requestCtx, &cashregisterv1.ViewBalanceRequest{}, callOption)
	if err != nil {
		handler.respondError(ctx, "register balance failed", err)
		return
	}
	handler.respondWithAmount(ctx, "balance", balance.GetAmount())
}

func (handler *httpHandler) handleClaim(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	claimed, err := handler.registerClient.ClaimTokens(requestCtx, &cashregisterv1.ClaimTokensRequest{}, callOption)
	if err != nil {
		handler.respondError(ctx, "claim failed", err)
		return
	}
	handler.respondWithAmount(ctx, "claimed", claimed.GetAmount())
}

func (handler *httpHandler) handleWallet(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	wallet, err := handler.fetchWallet(ctx.Request.Context(), callOption)
	if err != nil {
		handler.respondError(ctx, "wallet unavailable", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (handler *httpHandler) handleApprove(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	var request approveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.Amount == nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with amount"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	_, err := handler.tokenClient.Approve(requestCtx, &cashregisterv1.ApproveRequest{Spender: handler.cfg.RegisterAccount, Amount: *request.Amount}, callOption)
	if err != nil {
		handler.respondError(ctx, "approve failed", err)
		return
	}
	wallet, err := handler.fetchWallet(ctx.Request.Context(), callOption)
	if err != nil {
		handler.respondError(ctx, "wallet unavailable", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.To == "" || request.Amount == nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body with to and amount"))
		return
	}
	requestCtx, cancel := context.WithTimeout(ctx.Request.Context(), handler.cfg.RegisterTimeout)
	defer cancel()
	if _, err := handler.tokenClient.Transfer(requestCtx, &cashregisterv1.TransferRequest{To: request.To, Amount: *request.Amount}, callOption); err != nil {
		handler.respondError(ctx, "transfer failed", err)
		return
	}
	wallet, err := handler.fetchWallet(ctx.Request.Context(), callOption)
	if err != nil {
		handler.respondError(ctx, "wallet unavailable", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

func (handler *httpHandler) fetchWallet(ctx context.Context, callOption grpc.CallOption) (*walletResponse, error) {
	requestCtx, cancel := context.WithTimeout(ctx, handler.cfg.RegisterTimeout)
	defer cancel()
	decimals, err := handler.tokenDecimals(requestCtx, callOption)
	if err != nil {
		return nil, err
	}
	balance, err := handler.tokenClient.BalanceOf(requestCtx, &cashregisterv1.BalanceOfRequest{}, callOption)
	if err != nil {
		return nil, err
	}
	allowance, err := handler.tokenClient.Allowance(requestCtx, &cashregisterv1.AllowanceRequest{Spender: handler.cfg.RegisterAccount}, callOption)
	if err != nil {
		return nil, err
	}
	history, err := handler.tokenClient.ListTransfers(requestCtx, &cashregisterv1.ListTransfersRequest{Limit: walletHistoryLimit}, callOption)
	if err != nil {
		return nil, err
	}
	transfers := make([]transferPayload, 0, len(history.GetTransfers()))
	for _, transfer := range history.GetTransfers() {
		transfers = append(transfers, transferPayload{
			TransferID:     transfer.TransferId,
			Kind:           transfer.Kind,
			Spender:        transfer.Spender,
			From:           transfer.From,
			To:             transfer.To,
			Amount:         newAmountPayload(transfer.Amount, decimals),
			CreatedUnixUTC: transfer.CreatedUnixUtc,
		})
	}
	return &walletResponse{
		Balance:           newAmountPayload(balance.GetAmount(), decimals),
		RegisterAllowance: newAmountPayload(allowance.GetAmount(), decimals),
		Transfers:         transfers,
	}, nil
}

// tokenDecimals caches the token's decimals after the first successful lookup.
func (handler *httpHandler) tokenDecimals(ctx context.Context, callOption grpc.CallOption) (int32, error) {
	handler.decimalsMu.Lock()
	defer handler.decimalsMu.Unlock()
	if handler.decimals != nil {
		return *handler.decimals, nil
	}
	info, err := handler.tokenClient.TokenInfo(ctx, &cashregisterv1.TokenInfoRequest{}, callOption)
	if err != nil {
		return 0, err
	}
	decimals := info.GetDecimals()
	handler.decimals = &decimals
	return decimals, nil
}

func (handler *httpHandler) respondWithReceipt(ctx *gin.Context, statusCode int, receipt *cashregisterv1.Receipt) {
	if receipt == nil {
		ctx.JSON(http.StatusBadGateway, errorResponse("register_error", "empty receipt"))
		return
	}
	ctx.JSON(statusCode, gin.H{"receipt": receiptPayload{
		ReceiptID:  receipt.ReceiptId,
		Purchaser:  receipt.Purchaser,
		TotalPrice: receipt.TotalPrice,
		Finished:   receipt.Finished,
		Status:     receipt.Status,
	}})
}

func (handler *httpHandler) respondWithAmount(ctx *gin.Context, key string, amount int64) {
	callOption, ok := handler.sessionCredentials(ctx)
	if !ok {
		return
	}
	decimals, err := handler.tokenDecimals(ctx.Request.Context(), callOption)
	if err != nil {
		handler.respondError(ctx, "token info failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{key: newAmountPayload(amount, decimals)})
}

// sessionCredentials maps the session user onto per-call bearer credentials, answering 401 when there is no session
// and 403 when the session belongs to the register account.
func (handler *httpHandler) sessionCredentials(ctx *gin.Context) (grpc.CallOption, bool) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return nil, false
	}
	principal, err := register.NewPrincipal(claims.GetUserID())
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "session has no user"))
		return nil, false
	}
	if principal.String() == handler.cfg.RegisterAccount {
		ctx.JSON(http.StatusForbidden, errorResponse("unauthorized", "the register account has no session access"))
		return nil, false
	}
	return grpc.PerRPCCredentials(auth.NewTokenCredentials(handler.issuer, principal, !handler.cfg.RegisterInsecure)), true
}

func (handler *httpHandler) respondError(ctx *gin.Context, message string, err error) {
	httpStatus := httpStatusFromGRPC(status.Code(err))
	if httpStatus == http.StatusBadGateway {
		handler.logger.Error(message, zap.Error(err))
		ctx.JSON(httpStatus, errorResponse("register_error", message))
		return
	}
	ctx.JSON(httpStatus, errorResponse(grpcserver.ErrorReason(err), message))
}

func httpStatusFromGRPC(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func receiptIDParam(ctx *gin.Context) (int64, bool) {
	receiptID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || receiptID < register.FirstReceiptID {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_receipt_id", "receipt id must be a positive integer"))
		return 0, false
	}
	return receiptID, true
}

func getClaims(ctx *gin.Context) *sessionvalidator.Claims {
	claimsValue, ok := ctx.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*sessionvalidator.Claims)
	return claims
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func newAmountPayload(units int64, decimals int32) amountPayload {
	return amountPayload{
		Units:   units,
		Display: decimal.New(units, -decimals).String(),
	}
}

type priceRequest struct {
	Price *int64 `json:"price"`
}

type newReceiptRequest struct {
	Purchaser string `json:"purchaser"`
}

type ringUpRequest struct {
	ItemID string `json:"item_id"`
}

type approveRequest struct {
	Amount *int64 `json:"amount"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount *int64 `json:"amount"`
}

type receiptPayload struct {
	ReceiptID  int64  `json:"receipt_id"`
	Purchaser  string `json:"purchaser"`
	TotalPrice int64  `json:"total_price"`
	Finished   bool   `json:"finished"`
	Status     string `json:"status"`
}

type amountPayload struct {
	Units   int64  `json:"units"`
	Display string `json:"display"`
}

type walletResponse struct {
	Balance           amountPayload     `json:"balance"`
	RegisterAllowance amountPayload     `json:"register_allowance"`
	Transfers         []transferPayload `json:"transfers"`
}

type transferPayload struct {
	TransferID     string        `json:"transfer_id"`
	Kind           string        `json:"kind"`
	Spender        string        `json:"spender,omitempty"`
	From           string        `json:"from,omitempty"`
	To             string        `json:"to"`
	Amount         amountPayload `json:"amount"`
	CreatedUnixUTC int64         `json:"created_unix_utc"`
}

func waitForClientReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if state == connectivity.Shutdown {
			return errors.New("grpc connection shutdown before ready")
		}
		if !conn.WaitForStateChange(ctx, state) {
			if err := ctx.Err(); err != nil {
				return err
			}
			return errors.New("grpc connection failed to reach ready state")
		}
	}
}
