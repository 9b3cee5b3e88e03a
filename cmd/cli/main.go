package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/fundledger/internal/adapter/http/dto"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fundledger-cli",
		Short:         "Fundledger CLI tool",
		Long:          `A command line interface for importing transactions into fundledger and reading returns.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the fundledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(importCmd(), returnsCmd(), ratesCmd(), migrateCmd())

	return rootCmd
}

func client() *apiClient {
	return newAPIClient(baseURL, timeout)
}

func importCmd() *cobra.Command {
	var (
		file             string
		source           string
		dateFormat       string
		dryRun           bool
		force            bool
		noSkipDuplicates bool
		verbose          bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import rows or normalized records from a JSON file",
		Long: `Import reads either a JSON array of raw rows or a full import request
object ({"rows": [...]} or {"transactions": [...]}) and posts it to the API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			req, err := parseImportFile(raw)
			if err != nil {
				return err
			}

			if source != "" {
				req.Source = source
			} else if req.Source == "" {
				req.Source = file
			}

			if dateFormat != "" {
				req.DateFormat = dateFormat
			}

			skip := !noSkipDuplicates
			req.Options = &dto.ImportOptionsRequest{
				SkipDuplicates: &skip,
				ForceImport:    force,
				DryRun:         dryRun,
			}

			var summary dto.ImportSummaryResponse
			if err := client().do(cmd.Context(), http.MethodPost, "/api/v1/imports", nil, req, &summary); err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), &summary, verbose)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with rows or an import request")
	cmd.Flags().StringVar(&source, "source", "", "Source label recorded on the import run (defaults to the file name)")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "Preferred date layout for ambiguous dates")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be imported without writing")
	cmd.Flags().BoolVar(&force, "force", false, "Import duplicates and records needing review")
	cmd.Flags().BoolVar(&noSkipDuplicates, "no-skip-duplicates", false, "Do not skip exact duplicates")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every record outcome")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseImportFile(raw []byte) (*dto.ImportRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("import file is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '[' {
		var rows []map[string]any
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to parse rows: %w", err)
		}

		return &dto.ImportRequest{Rows: rows}, nil
	}

	var req dto.ImportRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to parse import request: %w", err)
	}

	return &req, nil
}

// fingerprintWidth is how many fingerprint characters the outcome table shows.
const fingerprintWidth = 12

func printSummary(w io.Writer, s *dto.ImportSummaryResponse, verbose bool) {
	if s.DryRun {
		fmt.Fprintf(w, "Dry run: %d of %d records would be imported\n", s.Imported, s.Total)
	} else {
		fmt.Fprintf(w, "Import run %s: %d imported, %d skipped, %d failed (of %d)\n",
			s.RunID, s.Imported, s.Skipped, s.Failed, s.Total)
	}

	for _, e := range s.Errors {
		fmt.Fprintf(w, "  record %d: %s\n", e.Index, e.Message)
	}

	if !verbose || len(s.Outcomes) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSTATUS\tFINGERPRINT\tDUPLICATE OF\tSIMILAR")
	for _, o := range s.Outcomes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", o.Index, o.Status, truncate(o.Fingerprint, fingerprintWidth+3), o.DuplicateRef, len(o.Similar))
	}
	_ = tw.Flush()
}

func returnsCmd() *cobra.Command {
	var (
		investment string
		residual   string
		asOf       string
	)

	cmd := &cobra.Command{
		Use:   "returns",
		Short: "Show XIRR and multiples for an investment or the portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if residual != "" {
				query.Set("residual", residual)
			}
			if asOf != "" {
				query.Set("as_of", asOf)
			}

			path := "/api/v1/portfolio/returns"
			if investment != "" {
				path = "/api/v1/investments/" + url.PathEscape(investment) + "/returns"
			}

			var resp dto.ReturnsResponse
			if err := client().do(cmd.Context(), http.MethodGet, path, query, nil, &resp); err != nil {
				return err
			}

			printJSON(cmd.OutOrStdout(), resp)

			return nil
		},
	}

	cmd.Flags().StringVar(&investment, "investment", "", "Investment identifier (omit for the whole portfolio)")
	cmd.Flags().StringVar(&residual, "residual", "", "Residual value as of the valuation date")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Valuation date (YYYY-MM-DD, defaults to today)")

	return cmd
}

func ratesCmd() *cobra.Command {
	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate operations",
	}

	var date, from, to, rate string
	var resolve bool

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get a cached rate, optionally resolving it through the providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("date", date)
			query.Set("from", from)
			query.Set("to", to)
			if resolve {
				query.Set("resolve", "true")
			}

			var resp dto.RateResponse
			if err := client().do(cmd.Context(), http.MethodGet, "/api/v1/rates/", query, nil, &resp); err != nil {
				return err
			}

			printJSON(cmd.OutOrStdout(), resp)

			return nil
		},
	}
	getCmd.Flags().BoolVar(&resolve, "resolve", false, "Query the provider chain on a cache miss")

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store a manual rate override",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.SetRateRequest{Date: date, From: from, To: to, Rate: rate}

			var resp dto.RateResponse
			if err := client().do(cmd.Context(), http.MethodPut, "/api/v1/rates/", nil, req, &resp); err != nil {
				return err
			}

			printJSON(cmd.OutOrStdout(), resp)

			return nil
		},
	}
	setCmd.Flags().StringVar(&rate, "rate", "", "Units of --to per one unit of --from")
	_ = setCmd.MarkFlagRequired("rate")

	for _, c := range []*cobra.Command{getCmd, setCmd} {
		c.Flags().StringVar(&date, "date", "", "Rate date (YYYY-MM-DD)")
		c.Flags().StringVar(&from, "from", "", "Source currency")
		c.Flags().StringVar(&to, "to", "USD", "Target currency")
		_ = c.MarkFlagRequired("date")
		_ = c.MarkFlagRequired("from")
		ratesCmd.AddCommand(c)
	}

	return ratesCmd
}

func printJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to format response: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	if n <= 3 {
		return s[:n]
	}

	return s[:n-3] + "..."
}
