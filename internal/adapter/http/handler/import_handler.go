package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// ImportService is the import use case surface used by ImportHandler.
type ImportService interface {
	ImportRows(ctx context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error)
	ImportBatch(ctx context.Context, input usecase.ImportBatchInput) (*domain.ImportSummary, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error)
	GetRun(ctx context.Context, id string) (*domain.ImportRun, error)
}

// ImportHandler handles import HTTP requests.
type ImportHandler struct {
	importUC ImportService
	mapping  domain.FieldMapping
	types    *domain.TransactionTypeTable
}

// NewImportHandler creates a new ImportHandler. mapping and types are used
// when a request does not carry its own.
func NewImportHandler(importUC ImportService, mapping domain.FieldMapping, types *domain.TransactionTypeTable) *ImportHandler {
	return &ImportHandler{
		importUC: importUC,
		mapping:  mapping,
		types:    types,
	}
}

// Create imports a batch of raw rows or normalized records.
func (h *ImportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	summary, err := h.importRequest(r.Context(), &req)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to import", err.Error())
		return
	}

	status := http.StatusCreated
	if summary.DryRun {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.ImportSummaryFromDomain(summary))
}

func (h *ImportHandler) importRequest(ctx context.Context, req *dto.ImportRequest) (*domain.ImportSummary, error) {
	if req.IsNormalized() {
		input, err := req.ToBatchInput()
		if err != nil {
			return nil, err
		}
		return h.importUC.ImportBatch(ctx, input)
	}

	input, err := req.ToUseCaseInput(h.mapping, h.types)
	if err != nil {
		return nil, err
	}

	return h.importUC.ImportRows(ctx, input)
}

// List lists import runs.
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	runs, err := h.importUC.ListRuns(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list imports", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ImportRunsFromDomain(runs))
}

// Get retrieves an import run by ID.
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing import ID", "")
		return
	}

	run, err := h.importUC.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get import", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ImportRunFromDomain(run))
}
