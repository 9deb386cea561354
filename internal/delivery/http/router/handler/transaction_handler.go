package handler

import (
	"net/http"
	"time"

	"aimpact/internal/delivery/http/middleware"
	"aimpact/internal/delivery/http/response"
	"aimpact/internal/domain/entity"
	"aimpact/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TransactionHandler holds dependencies for wallet transaction handlers.
type TransactionHandler struct {
	uc usecase.TransactionUsecase
}

// NewTransactionHandler is the constructor for TransactionHandler, injected by Fx.
func NewTransactionHandler(uc usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

type recordTransactionRequest struct {
	Type        string  `json:"type"`
	TxHash      string  `json:"txHash"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
}

// transactionBody is the wire shape of a wallet transaction record.
type transactionBody struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type,omitempty"`
	TxHash      string    `json:"txHash,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toTransactionBody(record *entity.WalletTransaction) transactionBody {
	return transactionBody{
		ID:          record.ID,
		Type:        record.Type,
		TxHash:      record.TxHash,
		From:        record.FromAddress,
		To:          record.ToAddress,
		Amount:      record.Amount,
		Currency:    record.Currency,
		Category:    record.Category,
		Status:      record.Status,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	}
}

// Record handles the transaction recording request.
func (h *TransactionHandler) Record(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var input recordTransactionRequest
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "Invalid transaction input")
	}
	if input.Amount < 0 {
		return response.BadRequest(c, "Amount must be a positive number")
	}
	if input.Currency == "" {
		return response.BadRequest(c, "Currency is required")
	}

	record, err := h.uc.Record(c.Request().Context(), usecase.RecordTransactionInput{
		AccountID:   accountID,
		Type:        input.Type,
		TxHash:      input.TxHash,
		FromAddress: input.From,
		ToAddress:   input.To,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Category:    input.Category,
		Status:      input.Status,
		Description: input.Description,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, map[string]any{
		"message":     "Transaction created",
		"transaction": toTransactionBody(record),
	})
}

// List handles the transaction listing request with optional filters.
func (h *TransactionHandler) List(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	input, err := h.listInput(c, accountID)
	if err != nil {
		return response.BadRequest(c, "Invalid date filter")
	}

	records, err := h.uc.List(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	bodies := make([]transactionBody, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, toTransactionBody(record))
	}

	return response.OK(c, map[string]any{"transactions": bodies})
}

// Export streams the filtered transaction history as a CSV attachment.
func (h *TransactionHandler) Export(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	input, err := h.listInput(c, accountID)
	if err != nil {
		return response.BadRequest(c, "Invalid date filter")
	}

	csvBytes, err := h.uc.ExportCSV(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.csv"`)

	return c.Blob(http.StatusOK, "text/csv", csvBytes)
}

// listInput parses the shared query filters of List and Export.
func (h *TransactionHandler) listInput(c echo.Context, accountID uuid.UUID) (usecase.ListTransactionsInput, error) {
	input := usecase.ListTransactionsInput{
		AccountID: accountID,
		Category:  c.QueryParam("category"),
		Status:    c.QueryParam("status"),
	}

	if raw := c.QueryParam("startDate"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return input, err
		}
		input.StartDate = parsed
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return input, err
		}
		input.EndDate = parsed
	}

	return input, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}

	return time.Parse("2006-01-02", raw)
}
