package impl

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "aimpact/internal/delivery/context"
	"aimpact/internal/domain/entity"
	domainerrors "aimpact/internal/domain/errors"
	"aimpact/internal/domain/repository"
	"aimpact/internal/usecase"
)

// csvHeader is the fixed column order of transaction exports.
var csvHeader = []string{"Date", "Type", "Amount", "Category", "Status", "Description"}

// transactionService implements the TransactionUsecase interface.
type transactionService struct {
	transactionRepo repository.TransactionRepository
	notifier        usecase.TransactionNotifier
	logger          *slog.Logger
}

// TransactionServiceParams holds dependencies for transactionService, injected by Fx.
type TransactionServiceParams struct {
	fx.In

	TransactionRepo repository.TransactionRepository
	Notifier        usecase.TransactionNotifier
	Logger          *slog.Logger
}

// NewTransactionService is the constructor for transactionService.
func NewTransactionService(params TransactionServiceParams) usecase.TransactionUsecase {
	return &transactionService{
		transactionRepo: params.TransactionRepo,
		notifier:        params.Notifier,
		logger:          params.Logger,
	}
}

func (srv *transactionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Record persists a wallet transaction and pushes it to connected clients.
func (srv *transactionService) Record(ctx context.Context, input usecase.RecordTransactionInput) (*entity.WalletTransaction, error) {
	if input.Amount < 0 {
		return nil, domainerrors.ErrTransactionRecordFailed.WrapMessage("amount must be non-negative")
	}

	status := input.Status
	if status == "" {
		status = entity.TransactionStatusPending
	}
	switch status {
	case entity.TransactionStatusPending, entity.TransactionStatusConfirmed, entity.TransactionStatusFailed:
	default:
		return nil, domainerrors.ErrTransactionRecordFailed.WrapMessage("unknown status")
	}

	record := &entity.WalletTransaction{
		AccountID:   input.AccountID,
		Type:        input.Type,
		TxHash:      input.TxHash,
		FromAddress: input.FromAddress,
		ToAddress:   input.ToAddress,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Category:    input.Category,
		Status:      status,
		Description: input.Description,
	}

	if err := srv.transactionRepo.Create(ctx, record); err != nil {
		srv.log(ctx).Error("Failed to record transaction",
			slog.Any("accountID", input.AccountID),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to record transaction")
	}

	srv.log(ctx).Info("Transaction recorded",
		slog.Any("transactionID", record.ID),
		slog.Any("accountID", record.AccountID),
	)

	if srv.notifier != nil {
		srv.notifier.NotifyTransaction(record)
	}

	return record, nil
}

// List retrieves the account's transactions matching the filter, newest first.
func (srv *transactionService) List(ctx context.Context, input usecase.ListTransactionsInput) ([]*entity.WalletTransaction, error) {
	records, err := srv.transactionRepo.ListByAccount(ctx, input.AccountID, repository.TransactionFilter{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Category:  input.Category,
		Status:    input.Status,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	return records, nil
}

// ExportCSV renders the filtered transaction history as a CSV document.
func (srv *transactionService) ExportCSV(ctx context.Context, input usecase.ListTransactionsInput) ([]byte, error) {
	records, err := srv.List(ctx, input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV header")
	}

	for _, record := range records {
		row := []string{
			record.CreatedAt.Format(time.RFC3339),
			record.Type,
			strconv.FormatFloat(record.Amount, 'f', -1, 64),
			record.Category,
			record.Status,
			record.Description,
		}
		if err := writer.Write(row); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush CSV")
	}

	return buf.Bytes(), nil
}
