// Package reporter renders ingest results and allocation breakdowns for the
// CLI in three formats: console for terminals, JSON for programmatic
// consumption, and CSV for spreadsheets.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"xpns-ingestion-service/internal/allocation"
	"xpns-ingestion-service/internal/ingest"
	"xpns-ingestion-service/pkg/errors"
	"xpns-ingestion-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format          OutputFormat `json:"format"`
	IncludeErrors   bool         `json:"include_errors"`
	IncludeWarnings bool         `json:"include_warnings"`
	CSVHeaders      bool         `json:"csv_headers"`
	CSVDelimiter    rune         `json:"csv_delimiter"`
}

// DefaultReportConfig returns a console configuration with errors and
// warnings included.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:          FormatConsole,
		IncludeErrors:   true,
		IncludeWarnings: true,
		CSVHeaders:      true,
		CSVDelimiter:    ',',
	}
}

// Reporter writes ingest and allocation reports in the configured format.
type Reporter struct {
	config *ReportConfig
	logger logger.Logger
}

// NewReporter creates a Reporter with the given configuration.
func NewReporter(config *ReportConfig) (*Reporter, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if !config.Format.IsValid() {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "report_format", config.Format, nil).
			WithSuggestion("use one of: console, json, csv")
	}

	return &Reporter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("reporter"),
	}, nil
}

// WriteIngestReport renders one ingest run.
func (r *Reporter) WriteIngestReport(w io.Writer, res *ingest.Result) error {
	switch r.config.Format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatCSV:
		return r.writeIngestCSV(w, res)
	default:
		return r.writeIngestConsole(w, res)
	}
}

// WriteAllocationReport renders one allocation breakdown against the
// transaction total it divides.
func (r *Reporter) WriteAllocationReport(w io.Writer, a allocation.Allocation, total int64) error {
	switch r.config.Format {
	case FormatJSON:
		return writeJSON(w, struct {
			Total      int64                 `json:"total"`
			Allocation allocation.Allocation `json:"allocation"`
		}{Total: total, Allocation: a})
	case FormatCSV:
		return r.writeAllocationCSV(w, a)
	default:
		return r.writeAllocationConsole(w, a, total)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Reporter) writeIngestConsole(w io.Writer, res *ingest.Result) error {
	var b strings.Builder

	b.WriteString("Statement Ingest Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "File:    %s\n", res.File)
	fmt.Fprintf(&b, "Run ID:  %s\n", res.RunID)
	fmt.Fprintf(&b, "Rows:    %d data rows (%d lines read)\n", res.Stats.DataRows, res.Stats.TotalLines)

	if !res.Validation.IsValid {
		fmt.Fprintf(&b, "\nMapping did not validate:\n")
		for _, f := range res.Validation.MissingFields {
			fmt.Fprintf(&b, "  missing: %s\n", f)
		}
		for _, d := range res.Validation.DuplicateValues {
			fmt.Fprintf(&b, "  duplicate: %s\n", d)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	if res.Transform != nil {
		fmt.Fprintf(&b, "\nTransactions (%d):\n", len(res.Transform.Transactions))
		fmt.Fprintf(&b, "%-26s %-7s %12s  %s\n", "Date", "Type", "Amount", "Description")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, tx := range res.Transform.Transactions {
			fmt.Fprintf(&b, "%-26s %-7s %12s  %s\n",
				tx.ISODate(), tx.Type, formatMinorUnits(tx.Amount), tx.Description)
		}

		if r.config.IncludeErrors && len(res.Transform.Errors) > 0 {
			fmt.Fprintf(&b, "\nErrors (%d):\n", len(res.Transform.Errors))
			for _, msg := range res.Transform.Errors {
				fmt.Fprintf(&b, "  %s\n", msg)
			}
		}
		if r.config.IncludeWarnings && len(res.Transform.Warnings) > 0 {
			fmt.Fprintf(&b, "\nWarnings (%d):\n", len(res.Transform.Warnings))
			for _, msg := range res.Transform.Warnings {
				fmt.Fprintf(&b, "  %s\n", msg)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) writeIngestCSV(w io.Writer, res *ingest.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = r.config.CSVDelimiter

	if r.config.CSVHeaders {
		if err := cw.Write([]string{"date", "description", "subdescription", "type", "amount"}); err != nil {
			return err
		}
	}

	if res.Transform != nil {
		for _, tx := range res.Transform.Transactions {
			record := []string{
				tx.ISODate(),
				tx.Description,
				tx.Subdescription,
				string(tx.Type),
				strconv.FormatInt(tx.Amount, 10),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func (r *Reporter) writeAllocationConsole(w io.Writer, a allocation.Allocation, total int64) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Allocation (%s) of %s\n", a.Method, formatMinorUnits(total))
	b.WriteString(strings.Repeat("-", 44) + "\n")
	for _, m := range a.Members {
		fmt.Fprintf(&b, "%-20s %10s %12s\n", m.User, m.Portion.String(), formatMinorUnits(m.Amount))
	}
	b.WriteString(strings.Repeat("-", 44) + "\n")
	fmt.Fprintf(&b, "%-20s %10s %12s\n", "total", "", formatMinorUnits(a.Total()))

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) writeAllocationCSV(w io.Writer, a allocation.Allocation) error {
	cw := csv.NewWriter(w)
	cw.Comma = r.config.CSVDelimiter

	if r.config.CSVHeaders {
		if err := cw.Write([]string{"user", "portion", "amount"}); err != nil {
			return err
		}
	}

	for _, m := range a.Members {
		record := []string{m.User, m.Portion.String(), strconv.FormatInt(m.Amount, 10)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatMinorUnits renders minor units as a major-unit string for display.
func formatMinorUnits(amount int64) string {
	return "$" + decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).StringFixed(2)
}
