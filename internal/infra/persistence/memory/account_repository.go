// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back unit tests and local development without
// a running PostgreSQL instance.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
	"aimpact/internal/domain/repository"
)

// AccountRepository is an in-memory implementation of repository.AccountRepository.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*entity.Account
	byEmail  map[string]uuid.UUID
}

// NewAccountRepository creates an empty in-memory account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[uuid.UUID]*entity.Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

// FindByID retrieves a single account by its unique ID.
func (repo *AccountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	account, ok := repo.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(account), nil
}

// FindByEmail retrieves a single account by its email address.
func (repo *AccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := repo.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(repo.accounts[id]), nil
}

// Create persists a new account. Email uniqueness is enforced under the
// write lock, so concurrent registrations for one address resolve to exactly
// one stored account.
func (repo *AccountRepository) Create(_ context.Context, account *entity.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	key := normalizeEmail(account.Email)
	if _, exists := repo.byEmail[key]; exists {
		return repository.ErrDuplicateEmail
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	repo.accounts[account.ID] = cloneAccount(account)
	repo.byEmail[key] = account.ID

	return nil
}

// Update modifies an existing account entity in the store.
func (repo *AccountRepository) Update(_ context.Context, account *entity.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	existing, ok := repo.accounts[account.ID]
	if !ok {
		return repository.ErrAccountNotFound
	}

	key := normalizeEmail(account.Email)
	if key != normalizeEmail(existing.Email) {
		if _, taken := repo.byEmail[key]; taken {
			return repository.ErrDuplicateEmail
		}
		delete(repo.byEmail, normalizeEmail(existing.Email))
		repo.byEmail[key] = account.ID
	}

	account.UpdatedAt = time.Now()
	repo.accounts[account.ID] = cloneAccount(account)

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneAccount(account *entity.Account) *entity.Account {
	if account == nil {
		return nil
	}
	cloned := *account

	return &cloned
}
