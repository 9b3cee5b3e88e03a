// Package rateprovider fetches historical exchange rates from HTTP APIs.
package rateprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/iho/fundledger/internal/domain"
)

// maxBody caps the response size read from a provider.
const maxBody = 1 << 20

// URLFunc builds the request URL for one lookup.
type URLFunc func(baseURL, apiKey string, date time.Time, from, to string) string

// PathFunc returns the JSONPath of the rate inside the response.
type PathFunc func(from, to string) string

// HTTPProvider implements usecase.RateProvider against a JSON HTTP API.
type HTTPProvider struct {
	name        string
	baseURL     string
	apiKey      string
	requiresKey bool
	buildURL    URLFunc
	ratePath    PathFunc
	client      *http.Client
	limiter     *rate.Limiter
}

// Options configure an HTTPProvider.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS limits outgoing requests; zero disables limiting.
	RPS    float64
	Client *http.Client
}

func newHTTPProvider(name string, requiresKey bool, buildURL URLFunc, ratePath PathFunc, defaultBase string, opts Options) *HTTPProvider {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	base := opts.BaseURL
	if base == "" {
		base = defaultBase
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := int(opts.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &HTTPProvider{
		name:        name,
		baseURL:     base,
		apiKey:      opts.APIKey,
		requiresKey: requiresKey,
		buildURL:    buildURL,
		ratePath:    ratePath,
		client:      client,
		limiter:     limiter,
	}
}

// Name returns the provider name.
func (p *HTTPProvider) Name() string {
	return p.name
}

// Enabled reports whether the provider has the credential it needs.
func (p *HTTPProvider) Enabled() bool {
	return !p.requiresKey || p.apiKey != ""
}

// Fetch returns the rate converting one unit of from into to on date.
func (p *HTTPProvider) Fetch(ctx context.Context, date time.Time, from, to string) (decimal.Decimal, error) {
	if !p.Enabled() {
		return decimal.Zero, fmt.Errorf("%s: %w", p.name, domain.ErrCredentialMissing)
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return decimal.Zero, fmt.Errorf("%s: %w", p.name, err)
		}
	}

	addr := p.buildURL(p.baseURL, p.apiKey, date, from, to)

	var body any
	if err := p.getJSON(ctx, addr, &body); err != nil {
		return decimal.Zero, err
	}

	path := p.ratePath(from, to)

	val, err := jsonpath.Get(path, body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: no value at %s", p.name, domain.ErrProviderUnavailable, path)
	}

	// jsonpath may wrap a single match in a list
	if list, ok := val.([]any); ok && len(list) > 0 {
		val = list[0]
	}

	r, err := toDecimal(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: %v", p.name, domain.ErrProviderUnavailable, err)
	}

	return r, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, addr string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", p.name, domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", p.name, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %s", p.name, domain.ErrCredentialMissing, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: %w: %s", p.name, domain.ErrProviderUnavailable, resp.Status)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	dec.UseNumber()

	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode: %v", p.name, domain.ErrProviderUnavailable, err)
	}

	return nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("rate is %T, not a number", v)
	}
}
