package model

import (
	"time"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
)

// AccountModel mirrors the 'accounts' table. PostgreSQL generates UUIDs via gen_random_uuid().
type AccountModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email              string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"`
	TwoFactorSecret    string    `gorm:"type:varchar(255)"`
	IsTwoFactorEnabled bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a pure domain entity.
func (m *AccountModel) ToDomain() *entity.Account {
	if m == nil {
		return nil
	}

	return &entity.Account{
		ID:                 m.ID,
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		TwoFactorSecret:    m.TwoFactorSecret,
		IsTwoFactorEnabled: m.IsTwoFactorEnabled,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromAccountDomain converts a domain Account entity to a persistence model.
func FromAccountDomain(data *entity.Account) *AccountModel {
	if data == nil {
		return nil
	}

	return &AccountModel{
		ID:                 data.ID,
		Email:              data.Email,
		PasswordHash:       data.PasswordHash,
		TwoFactorSecret:    data.TwoFactorSecret,
		IsTwoFactorEnabled: data.IsTwoFactorEnabled,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
