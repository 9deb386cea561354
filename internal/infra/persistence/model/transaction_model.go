package model

import (
	"time"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
)

// TransactionModel mirrors the 'wallet_transactions' table.
type TransactionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(32)"`
	TxHash      string    `gorm:"type:varchar(255)"`
	FromAddress string    `gorm:"type:varchar(255)"`
	ToAddress   string    `gorm:"type:varchar(255)"`
	Amount      float64   `gorm:"not null"`
	Currency    string    `gorm:"type:varchar(16);not null"`
	Category    string    `gorm:"type:varchar(64)"`
	Status      string    `gorm:"type:varchar(32);not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`

	Account *AccountModel `gorm:"foreignKey:AccountID"`
}

// TableName explicitly sets the table name for GORM.
func (TransactionModel) TableName() string {
	return "wallet_transactions"
}

// ToDomain converts the persistence model to a pure domain entity.
func (m *TransactionModel) ToDomain() *entity.WalletTransaction {
	if m == nil {
		return nil
	}

	return &entity.WalletTransaction{
		ID:          m.ID,
		AccountID:   m.AccountID,
		Type:        m.Type,
		TxHash:      m.TxHash,
		FromAddress: m.FromAddress,
		ToAddress:   m.ToAddress,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Category:    m.Category,
		Status:      m.Status,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// FromTransactionDomain converts a domain WalletTransaction to a persistence model.
func FromTransactionDomain(data *entity.WalletTransaction) *TransactionModel {
	if data == nil {
		return nil
	}

	return &TransactionModel{
		ID:          data.ID,
		AccountID:   data.AccountID,
		Type:        data.Type,
		TxHash:      data.TxHash,
		FromAddress: data.FromAddress,
		ToAddress:   data.ToAddress,
		Amount:      data.Amount,
		Currency:    data.Currency,
		Category:    data.Category,
		Status:      data.Status,
		Description: data.Description,
		CreatedAt:   data.CreatedAt,
	}
}
