package memory

import (
	"context"

	"aimpact/internal/domain/repository"
)

// TransactionManager is an in-memory stand-in for the GORM transaction
// manager. It offers no rollback; the callback runs directly against the
// shared stores. Good enough for unit tests, where each step either fully
// succeeds or the test asserts on the partial state.
type TransactionManager struct {
	Accounts     *AccountRepository
	Transactions *TransactionRepository
}

// NewTransactionManager wires a manager over the given in-memory stores.
func NewTransactionManager(accounts *AccountRepository, transactions *TransactionRepository) *TransactionManager {
	return &TransactionManager{Accounts: accounts, Transactions: transactions}
}

// Execute runs the function against the in-memory stores.
func (tm *TransactionManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&memoryRepositoryFactory{manager: tm})
}

type memoryRepositoryFactory struct {
	manager *TransactionManager
}

func (f *memoryRepositoryFactory) AccountRepo() repository.AccountRepository {
	return f.manager.Accounts
}

func (f *memoryRepositoryFactory) TransactionRepo() repository.TransactionRepository {
	return f.manager.Transactions
}
