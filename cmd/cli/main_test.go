package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.Body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1})

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestParseImportFile(t *testing.T) {
	t.Run("array of rows", func(t *testing.T) {
		req, err := parseImportFile([]byte(` [{"Date":"2024-01-05","Amount":1500.25}]`))
		require.NoError(t, err)
		require.Len(t, req.Rows, 1)
		assert.Equal(t, json.Number("1500.25"), req.Rows[0]["Amount"])
	})

	t.Run("request object", func(t *testing.T) {
		req, err := parseImportFile([]byte(`{"source":"bank.xlsx","transactions":[{"date":"2024-01-05","direction":-1}]}`))
		require.NoError(t, err)
		assert.Equal(t, "bank.xlsx", req.Source)
		assert.True(t, req.IsNormalized())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseImportFile([]byte("  \n"))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseImportFile([]byte(`[{"Date":`))
		assert.Error(t, err)
	})
}

func TestImportCmd(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, dto.ImportSummaryResponse{
		Total:    2,
		Imported: 1,
		DryRun:   true,
		Outcomes: []dto.OutcomeResponse{
			{Index: 0, Status: domain.OutcomeWouldImport, Fingerprint: "0123456789abcdef"},
			{Index: 1, Status: domain.OutcomeSkippedDuplicate, DuplicateRef: "01HX"},
		},
	})

	file := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"Date":"2024-01-05"},{"Date":"2024-01-06"}]`), 0o600))

	out, err := execute(t, "--url", srv.URL, "import", "--file", file, "--dry-run", "--no-skip-duplicates", "-v")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/v1/imports", rec.Path)

	var sent dto.ImportRequest
	require.NoError(t, json.Unmarshal(rec.Body, &sent))
	assert.Len(t, sent.Rows, 2)
	assert.Equal(t, file, sent.Source)
	require.NotNil(t, sent.Options)
	assert.True(t, sent.Options.DryRun)
	assert.False(t, sent.Options.ForceImport)
	require.NotNil(t, sent.Options.SkipDuplicates)
	assert.False(t, *sent.Options.SkipDuplicates)

	assert.Contains(t, out, "Dry run: 1 of 2 records would be imported")
	assert.Contains(t, out, "0123456789ab...")
	assert.Contains(t, out, "01HX")
}

func TestImportCmdMissingFile(t *testing.T) {
	_, err := execute(t, "import", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReturnsCmd(t *testing.T) {
	moic := 1.5
	srv, rec := newTestServer(t, http.StatusOK, dto.ReturnsResponse{Identifier: "Fund A", AsOf: "2024-12-31", MOIC: &moic})

	out, err := execute(t, "--url", srv.URL, "returns", "--investment", "Fund A", "--residual", "1000", "--as-of", "2024-12-31")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/v1/investments/Fund A/returns", rec.Path)
	assert.Contains(t, rec.Query, "residual=1000")
	assert.Contains(t, rec.Query, "as_of=2024-12-31")
	assert.Contains(t, out, `"moic": 1.5`)
}

func TestReturnsCmdPortfolio(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, dto.ReturnsResponse{AsOf: "2024-12-31"})

	_, err := execute(t, "--url", srv.URL, "returns")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/portfolio/returns", rec.Path)
	assert.Empty(t, rec.Query)
}

func TestRatesGetCmd(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, dto.RateResponse{Date: "2024-01-05", From: "EUR", To: "USD", Source: domain.RateSourceAPI})

	out, err := execute(t, "--url", srv.URL, "rates", "get", "--date", "2024-01-05", "--from", "EUR", "--resolve")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/v1/rates/", rec.Path)
	assert.Contains(t, rec.Query, "resolve=true")
	assert.Contains(t, rec.Query, "to=USD")
	assert.Contains(t, out, `"from": "EUR"`)
}

func TestRatesSetCmd(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, dto.RateResponse{Date: "2024-01-05", From: "ILS", To: "USD", Source: domain.RateSourceManual})

	_, err := execute(t, "--url", srv.URL, "rates", "set", "--date", "2024-01-05", "--from", "ILS", "--rate", "0.27")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.Method)

	var sent dto.SetRateRequest
	require.NoError(t, json.Unmarshal(rec.Body, &sent))
	assert.Equal(t, dto.SetRateRequest{Date: "2024-01-05", From: "ILS", To: "USD", Rate: "0.27"}, sent)
}

func TestAPIErrorIsReported(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, dto.ErrorResponse{Error: "failed to compute returns", Message: "no cash flows"})

	_, err := execute(t, "--url", srv.URL, "returns", "--investment", "Fund B")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 404"))
	assert.Contains(t, err.Error(), "no cash flows")
}
