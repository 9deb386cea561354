package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
	"aimpact/internal/domain/repository"
)

// TransactionRepository is an in-memory implementation of repository.TransactionRepository.
type TransactionRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]*entity.WalletTransaction
}

// NewTransactionRepository creates an empty in-memory transaction store.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		records: make(map[uuid.UUID][]*entity.WalletTransaction),
	}
}

// Create persists a new wallet transaction record.
func (repo *TransactionRepository) Create(_ context.Context, tx *entity.WalletTransaction) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	cloned := *tx
	repo.records[tx.AccountID] = append(repo.records[tx.AccountID], &cloned)

	return nil
}

// ListByAccount retrieves an account's records matching the filter, newest first.
func (repo *TransactionRepository) ListByAccount(_ context.Context, accountID uuid.UUID, filter repository.TransactionFilter) ([]*entity.WalletTransaction, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	matched := make([]*entity.WalletTransaction, 0)
	for _, record := range repo.records[accountID] {
		if !filter.StartDate.IsZero() && record.CreatedAt.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && record.CreatedAt.After(filter.EndDate) {
			continue
		}
		if filter.Category != "" && record.Category != filter.Category {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}

		cloned := *record
		matched = append(matched, &cloned)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, nil
}
