package repository

import (
	"context"
	"errors"
	"time"

	"aimpact/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTransactionNotFound is returned when a wallet transaction record is not found.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionFilter narrows ListByAccount results. Zero values mean "no
// constraint" for that field.
type TransactionFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Category  string
	Status    string
}

// TransactionRepository defines the operations for wallet transaction persistence.
type TransactionRepository interface {
	// Create persists a new wallet transaction record.
	Create(ctx context.Context, tx *entity.WalletTransaction) error

	// ListByAccount retrieves an account's records matching the filter,
	// newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]*entity.WalletTransaction, error)
}
