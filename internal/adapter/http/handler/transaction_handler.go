package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
)

// TransactionService is the ledger read surface used by TransactionHandler.
type TransactionService interface {
	GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error)
	SimilarTransactions(ctx context.Context, id string, threshold int) ([]domain.SimilarMatch, error)
	ListInvestments(ctx context.Context, limit, offset int) ([]*domain.Investment, error)
}

// TransactionHandler handles ledger read requests.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// List lists transactions, optionally filtered by investment and date range.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}

	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}

	txs, err := h.txUC.ListTransactions(r.Context(), domain.TransactionFilter{
		From:                 from,
		To:                   to,
		InvestmentIdentifier: r.URL.Query().Get("investment"),
		Limit:                parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:               parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.txUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Similar lists fuzzy near-duplicates of a transaction.
func (h *TransactionHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	matches, err := h.txUC.SimilarTransactions(r.Context(), id, parseIntQuery(r, "threshold", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to find similar transactions", err.Error())
		return
	}

	if matches == nil {
		matches = []domain.SimilarMatch{}
	}

	writeJSON(w, http.StatusOK, matches)
}

// ListInvestments lists known investments.
func (h *TransactionHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	investments, err := h.txUC.ListInvestments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list investments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvestmentsFromDomain(investments))
}
