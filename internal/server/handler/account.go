package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// AccountService defines the methods that the account handler requires from
// the service layer.
type AccountService interface {
	Create(ctx context.Context, name, book string, startingBalance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	List(ctx context.Context, opts domain.ListOpts) ([]domain.Account, error)
	Summary(ctx context.Context, id string) (domain.AccountSummary, error)
}

// AccountHandler serves bankroll account endpoints.
type AccountHandler struct {
	accounts AccountService
	paging   Paging
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts AccountService, paging Paging, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		paging:   paging.orDefault(),
		logger:   logHandler(logger, "accounts"),
	}
}

// Create opens an account.
// POST /api/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation: "+err.Error())
		return
	}

	acct, err := h.accounts.Create(r.Context(), req.Name, req.Book, req.StartingBalance)
	if err != nil {
		writeServiceError(w, r, h.logger, "create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(acct))
}

type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

// List returns accounts.
// GET /api/accounts?limit=50&offset=0
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context(), parseListOpts(r, h.paging))
	if err != nil {
		writeServiceError(w, r, h.logger, "list accounts", err)
		return
	}
	out := make([]accountResponse, len(list))
	for i, a := range list {
		out[i] = newAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, listAccountsResponse{Accounts: out})
}

// Get returns one account.
// GET /api/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get account", err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(acct))
}

// Summary returns the account's record, staked total, net and ROI.
// GET /api/accounts/{id}/summary
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.accounts.Summary(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, "account summary", err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}
