package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
	"banking-system/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type DepositRequest struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
}

type WithdrawRequest struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
}

type TransferRequest struct {
	SourceAccountID int64  `json:"source_account_id"`
	TargetAccountID int64  `json:"target_account_id"`
	Amount          string `json:"amount"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

type TransactionResponse struct {
	TransactionID   int64   `json:"transaction_id"`
	Amount          string  `json:"amount"`
	AccountID       int64   `json:"account_id"`
	TargetAccountID *int64  `json:"target_account_id,omitempty"`
	IdempotencyKey  *string `json:"idempotency_key,omitempty"`
	TransactionDate string  `json:"transaction_date"`
}

func newTransactionResponse(tx *domain.Transaction) TransactionResponse {
	response := TransactionResponse{
		TransactionID:   tx.ID,
		Amount:          tx.Amount.StringFixed(2),
		AccountID:       tx.AccountID,
		TargetAccountID: tx.TargetAccountID,
		TransactionDate: tx.TransactionDate.UTC().Format(time.RFC3339),
	}
	if tx.IdempotencyKey != nil {
		keyStr := tx.IdempotencyKey.String()
		response.IdempotencyKey = &keyStr
	}
	return response
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	transaction, err := h.transactionService.Deposit(r.Context(), req.AccountID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(transaction))
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	transaction, err := h.transactionService.Withdraw(r.Context(), req.AccountID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(transaction))
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Parse optional idempotency key
	var idempotencyKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid idempotency_key format").WithDetails(err.Error()))
			return
		}
		idempotencyKey = &key
	}

	transaction, err := h.transactionService.Transfer(r.Context(), req.SourceAccountID, req.TargetAccountID, amount, idempotencyKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(transaction))
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.InvalidAmount, "invalid amount format")
	}
	return amount, nil
}
