package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// AnalyticsService computes return metrics.
type AnalyticsService interface {
	InvestmentReturns(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error)
	PortfolioReturns(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error)
}

// ReturnsHandler handles return-metric requests.
type ReturnsHandler struct {
	analytics AnalyticsService
}

// NewReturnsHandler creates a new ReturnsHandler.
func NewReturnsHandler(analytics AnalyticsService) *ReturnsHandler {
	return &ReturnsHandler{analytics: analytics}
}

// Investment returns metrics for one investment.
func (h *ReturnsHandler) Investment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing investment identifier", "")
		return
	}

	input, err := returnsQuery(r).ToUseCaseInput(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	metrics, err := h.analytics.InvestmentReturns(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute returns", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReturnsFromDomain(metrics))
}

// Portfolio returns metrics across all investments.
func (h *ReturnsHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	input, err := returnsQuery(r).ToUseCaseInput("")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	metrics, err := h.analytics.PortfolioReturns(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute returns", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReturnsFromDomain(metrics))
}

func returnsQuery(r *http.Request) dto.ReturnsQuery {
	q := r.URL.Query()
	return dto.ReturnsQuery{Residual: q.Get("residual"), AsOf: q.Get("as_of")}
}
