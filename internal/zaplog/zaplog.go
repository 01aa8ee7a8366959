// Package zaplog adapts the register and token logging hooks to zap.
package zaplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/cashregister/pkg/register"
	"github.com/MarkoPoloResearchLab/cashregister/pkg/token"
	"go.uber.org/zap"
)

// Logger writes register operations, receipt events and token operations as structured zap entries.
type Logger struct {
	logger *zap.Logger
}

var (
	_ register.OperationLogger = (*Logger)(nil)
	_ register.EventPublisher  = (*Logger)(nil)
	_ token.OperationLogger    = (*Logger)(nil)
)

// New returns an adapter over logger. A nil logger is replaced by zap.NewNop.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger}
}

// LogOperation records a register operation at info level, or warn level when it failed.
func (adapter *Logger) LogOperation(_ context.Context, entry register.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("caller", entry.Caller.String()),
		zap.String("status", entry.Status),
	}
	if entry.ReceiptID != 0 {
		fields = append(fields, zap.Int64("receipt_id", entry.ReceiptID.Int64()))
	}
	if itemID := entry.ItemID.String(); itemID != "" {
		fields = append(fields, zap.String("item_id", itemID))
	}
	fields = append(fields, zap.Int64("amount", entry.Amount.Int64()))
	if entry.Error != nil {
		adapter.logger.Warn("register operation failed", append(fields, zap.Error(entry.Error))...)
		return
	}
	adapter.logger.Info("register operation", fields...)
}

// PublishReceiptCreated records a committed ReceiptCreated event.
func (adapter *Logger) PublishReceiptCreated(_ context.Context, event register.ReceiptCreated) {
	adapter.logger.Info("receipt created",
		zap.String("purchaser", event.Purchaser.String()),
		zap.Int64("receipt_id", event.ReceiptID.Int64()),
		zap.Int64("created_unix_utc", event.CreatedUnixUTC),
	)
}

// LogTokenOperation records a token ledger operation.
func (adapter *Logger) LogTokenOperation(_ context.Context, entry token.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
		zap.Int64("amount", entry.Amount.Int64()),
	}
	if entry.TransferID != "" {
		fields = append(fields, zap.String("transfer_id", entry.TransferID))
	}
	if !entry.Spender.IsZero() {
		fields = append(fields, zap.String("spender", entry.Spender.String()))
	}
	if !entry.From.IsZero() {
		fields = append(fields, zap.String("from", entry.From.String()))
	}
	if !entry.To.IsZero() {
		fields = append(fields, zap.String("to", entry.To.String()))
	}
	if entry.Error != nil {
		adapter.logger.Warn("token operation failed", append(fields, zap.Error(entry.Error))...)
		return
	}
	adapter.logger.Info("token operation", fields...)
}
