package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aimpact/internal/domain/entity"
	"aimpact/internal/domain/repository"
)

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	account := &entity.Account{Email: "user@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", byID.Email)

	byEmail, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Account{Email: "user@example.com", PasswordHash: "hash"}))

	err := repo.Create(ctx, &entity.Account{Email: "user@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// Case and surrounding whitespace do not bypass uniqueness.
	err = repo.Create(ctx, &entity.Account{Email: "  USER@example.com ", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestAccountRepository_ConcurrentRegistrationsResolveToOne(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicated := 0, 0

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &entity.Account{Email: "race@example.com", PasswordHash: "hash"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if err == repository.ErrDuplicateEmail {
				duplicated++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicated)
}

func TestAccountRepository_Update(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	account := &entity.Account{Email: "user@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, account))

	account.TwoFactorSecret = "SECRET"
	account.IsTwoFactorEnabled = true
	require.NoError(t, repo.Update(ctx, account))

	stored, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsTwoFactorEnabled)
	assert.Equal(t, "SECRET", stored.TwoFactorSecret)
}

func TestAccountRepository_UpdateUnknownAccount(t *testing.T) {
	repo := NewAccountRepository()

	err := repo.Update(context.Background(), &entity.Account{ID: uuid.New(), Email: "x@example.com"})
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestTransactionRepository_CreateAndList(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	accountID := uuid.New()

	older := &entity.WalletTransaction{
		AccountID: accountID,
		Amount:    10,
		Currency:  "XRS",
		Status:    entity.TransactionStatusConfirmed,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &entity.WalletTransaction{
		AccountID: accountID,
		Amount:    25,
		Currency:  "XRS",
		Status:    entity.TransactionStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	records, err := repo.ListByAccount(ctx, accountID, repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)
}

func TestTransactionRepository_Filters(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()
	accountID := uuid.New()

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &entity.WalletTransaction{
		AccountID: accountID, Amount: 1, Currency: "XRS",
		Category: "groceries", Status: entity.TransactionStatusConfirmed,
		CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.WalletTransaction{
		AccountID: accountID, Amount: 2, Currency: "XRS",
		Category: "rent", Status: entity.TransactionStatusPending,
		CreatedAt: now,
	}))

	records, err := repo.ListByAccount(ctx, accountID, repository.TransactionFilter{Category: "rent"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rent", records[0].Category)

	records, err = repo.ListByAccount(ctx, accountID, repository.TransactionFilter{Status: entity.TransactionStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.TransactionStatusConfirmed, records[0].Status)

	records, err = repo.ListByAccount(ctx, accountID, repository.TransactionFilter{StartDate: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rent", records[0].Category)

	records, err = repo.ListByAccount(ctx, accountID, repository.TransactionFilter{EndDate: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "groceries", records[0].Category)
}

func TestTransactionRepository_IsolatedByAccount(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, repo.Create(ctx, &entity.WalletTransaction{AccountID: first, Amount: 1, Currency: "XRS", Status: entity.TransactionStatusPending}))

	records, err := repo.ListByAccount(ctx, second, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTransactionManager_Execute(t *testing.T) {
	accounts := NewAccountRepository()
	transactions := NewTransactionRepository()
	manager := NewTransactionManager(accounts, transactions)

	err := manager.Execute(context.Background(), func(factory repository.RepositoryFactory) error {
		return factory.AccountRepo().Create(context.Background(), &entity.Account{Email: "tx@example.com", PasswordHash: "hash"})
	})
	require.NoError(t, err)

	_, err = accounts.FindByEmail(context.Background(), "tx@example.com")
	assert.NoError(t, err)
}
