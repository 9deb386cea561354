// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses recorded against a wallet transaction.
const (
	TransactionStatusPending   = "Pending"
	TransactionStatusConfirmed = "Confirmed"
	TransactionStatusFailed    = "Failed"
)

// WalletTransaction is a bookkeeping record of a ledger transfer made by an
// account. TxHash/FromAddress/ToAddress refer to the on-ledger payment; the
// record itself carries no ledger-network behavior.
type WalletTransaction struct {
	ID          uuid.UUID // The unique identifier for this record.
	AccountID   uuid.UUID // The account that owns this record.
	Type        string    // User-facing kind of transfer, e.g. "Deposit".
	TxHash      string    // The on-ledger transaction hash.
	FromAddress string    // Sending ledger address.
	ToAddress   string    // Receiving ledger address.
	Amount      float64   // Transfer amount, non-negative.
	Currency    string    // Currency code, e.g. "XRS".
	Category    string    // Optional user-assigned category.
	Status      string    // Pending, Confirmed or Failed.
	Description string    // Optional free-form note.
	CreatedAt   time.Time // Timestamp of when this record was created.
}
