package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
	"banking-system/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	AccountTypeID  int64  `json:"account_type_id"`
	InitialBalance string `json:"initial_balance"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
}

type AccountResponse struct {
	AccountID      int64   `json:"account_id"`
	AccountTypeID  int64   `json:"account_type_id"`
	Balance        string  `json:"balance"`
	OverdraftLimit *string `json:"overdraft_limit,omitempty"`
}

type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}

type TransactionHistoryEntry struct {
	TransactionID   int64  `json:"transaction_id"`
	Type            int64  `json:"transaction_type_id"`
	Amount          string `json:"amount"`
	AccountID       int64  `json:"account_id"`
	TargetAccountID *int64 `json:"target_account_id,omitempty"`
	TransactionDate string `json:"transaction_date"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	initialBalance, err := decimal.NewFromString(req.InitialBalance)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid initial_balance format"))
		return
	}

	var overdraftLimit *decimal.Decimal
	if req.OverdraftLimit != "" {
		limit, err := decimal.NewFromString(req.OverdraftLimit)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid overdraft_limit format"))
			return
		}
		overdraftLimit = &limit
	}

	account, err := h.accountService.CreateAccount(r.Context(), req.AccountTypeID, initialBalance, overdraftLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := AccountResponse{
		AccountID:     account.ID,
		AccountTypeID: account.AccountTypeID,
		Balance:       account.Balance.String(),
	}
	if account.OverdraftLimit != nil {
		limitStr := account.OverdraftLimit.String()
		response.OverdraftLimit = &limitStr
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	balance, err := h.accountService.GetBalance(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Presentation formats to currency precision; the engine keeps the raw
	// decimal.
	response := BalanceResponse{
		AccountID: accountID,
		Balance:   balance.StringFixed(2),
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, errors.ErrInvalidAccountID)
		return
	}

	transactions, err := h.accountService.ListTransactions(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]TransactionHistoryEntry, 0, len(transactions))
	for _, tx := range transactions {
		entries = append(entries, newHistoryEntry(tx))
	}

	writeJSON(w, http.StatusOK, entries)
}

func newHistoryEntry(tx *domain.Transaction) TransactionHistoryEntry {
	return TransactionHistoryEntry{
		TransactionID:   tx.ID,
		Type:            tx.TransactionTypeID,
		Amount:          tx.Amount.StringFixed(2),
		AccountID:       tx.AccountID,
		TargetAccountID: tx.TargetAccountID,
		TransactionDate: tx.TransactionDate.UTC().Format(time.RFC3339),
	}
}

func parseAccountID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidAccountID
	}
	return id, nil
}
