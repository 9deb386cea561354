package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
)

// RecordTransactionInput defines the data required to record a wallet transaction.
type RecordTransactionInput struct {
	AccountID   uuid.UUID
	Type        string
	TxHash      string
	FromAddress string
	ToAddress   string
	Amount      float64
	Currency    string
	Category    string
	Status      string
	Description string
}

// ListTransactionsInput narrows the transaction listing. Zero values mean no
// constraint for that field.
type ListTransactionsInput struct {
	AccountID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Category  string
	Status    string
}

// TransactionNotifier pushes transaction events to connected clients.
// The WebSocket hub implements this; a no-op implementation serves tests.
type TransactionNotifier interface {
	NotifyTransaction(record *entity.WalletTransaction)
}

// TransactionUsecase defines the interface for wallet transaction operations.
type TransactionUsecase interface {
	Record(ctx context.Context, input RecordTransactionInput) (*entity.WalletTransaction, error)
	List(ctx context.Context, input ListTransactionsInput) ([]*entity.WalletTransaction, error)
	ExportCSV(ctx context.Context, input ListTransactionsInput) ([]byte, error)
}
