package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
)

// RateService is the exchange-rate surface used by RateHandler.
type RateService interface {
	Rate(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error)
	GetRate(ctx context.Context, date time.Time, from, to string) (*domain.ExchangeRate, error)
	SetManualRate(ctx context.Context, date time.Time, from, to string, rate decimal.Decimal) (*domain.ExchangeRate, error)
}

// RateHandler handles exchange-rate requests.
type RateHandler struct {
	rates RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rates RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

// Get returns the cached rate for date, from and to. With resolve=true a
// cache miss goes through the provider chain.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := domain.ParseISODate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if to == "" {
		to = "USD"
	}

	for _, c := range []string{from, to} {
		if err := domain.ValidateCurrency(c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid currency", err.Error())
			return
		}
	}

	stored, err := h.rates.GetRate(r.Context(), date, from, to)
	if err == nil {
		writeJSON(w, http.StatusOK, dto.RateFromDomain(stored))
		return
	}

	if !errors.Is(err, domain.ErrRateNotFound) || q.Get("resolve") != "true" {
		writeError(w, mapDomainError(err), "failed to get rate", err.Error())
		return
	}

	resolved, err := h.rates.Rate(r.Context(), date, from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve rate", err.Error())
		return
	}

	if !resolved.Valid {
		writeError(w, http.StatusNotFound, "rate unavailable", domain.ErrRateNotFound.Error())
		return
	}

	if stored, err := h.rates.GetRate(r.Context(), date, from, to); err == nil {
		writeJSON(w, http.StatusOK, dto.RateFromDomain(stored))
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(&domain.ExchangeRate{
		Key:  domain.RateKey{Date: date, From: from, To: to},
		Rate: resolved.Decimal,
	}))
}

// Set stores a manual rate override.
func (h *RateHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	parsed, err := req.Parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate", err.Error())
		return
	}

	rate, err := h.rates.SetManualRate(r.Context(), parsed.Date, parsed.From, parsed.To, parsed.Rate)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set rate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
}
