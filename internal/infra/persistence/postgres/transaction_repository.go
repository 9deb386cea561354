package postgres

import (
	"context"

	"aimpact/internal/domain/entity"
	"aimpact/internal/domain/repository"
	"aimpact/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// transactionRepository implements the repository.TransactionRepository interface using GORM.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository is the constructor for transactionRepository.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create persists a new wallet transaction record.
func (repo *transactionRepository) Create(ctx context.Context, tx *entity.WalletTransaction) error {
	txM := model.FromTransactionDomain(tx)

	if err := repo.db.WithContext(ctx).Create(txM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(err, "transaction references unknown account")
		}

		return errors.Wrap(err, "failed to create transaction")
	}

	tx.ID = txM.ID
	tx.CreatedAt = txM.CreatedAt

	return nil
}

// ListByAccount retrieves an account's records matching the filter, newest first.
func (repo *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter repository.TransactionFilter) ([]*entity.WalletTransaction, error) {
	query := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID)

	if !filter.StartDate.IsZero() {
		query = query.Where("created_at >= ?", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query = query.Where("created_at <= ?", filter.EndDate)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var models []*model.TransactionModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	records := make([]*entity.WalletTransaction, 0, len(models))
	for _, m := range models {
		records = append(records, m.ToDomain())
	}

	return records, nil
}
