package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"xpns-ingestion-service/cmd/xpns/config"
	"xpns-ingestion-service/internal/ingest"
	"xpns-ingestion-service/internal/mapping"
	"xpns-ingestion-service/internal/reporter"

	"github.com/spf13/cobra"
)

// Flags for the ingest command
var (
	ingestFile     string
	ingestTemplate string
	ingestNoHeader bool
	outputFormat   string
	outputFile     string
	showProgress   bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a bank statement CSV into normalized transactions",
	Long: `Ingest reads a bank statement CSV export, infers (or loads) a column
mapping, validates it, and transforms the rows into normalized transaction
records. Row-level problems are collected and reported; they never abort the
batch.

Examples:
  # Infer the mapping from the file's headers
  xpns ingest --file statement.csv

  # Headerless export with a saved mapping template
  xpns ingest --file export.csv --no-header --template chase

  # JSON output to a file
  xpns ingest --file statement.csv --output-format json --output-file batch.json`,

	PreRunE: validateIngestFlags,
	RunE:    runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "path to statement CSV file (required)")
	ingestCmd.Flags().StringVarP(&ingestTemplate, "template", "t", "", "name of a saved mapping template to use")
	ingestCmd.Flags().BoolVar(&ingestNoHeader, "no-header", false, "file has no header row (placeholder columns are synthesized)")
	ingestCmd.Flags().StringVar(&outputFormat, "output-format", "console", "output format: console, json, csv")
	ingestCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	ingestCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	ingestCmd.MarkFlagRequired("file")
}

func validateIngestFlags(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(ingestFile) == "" {
		return fmt.Errorf("--file is required")
	}

	switch outputFormat {
	case "console", "json", "csv":
	default:
		return fmt.Errorf("invalid output format '%s': must be console, json, or csv", outputFormat)
	}

	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	ingester, err := ingest.New(config.CreateIngestConfig(!ingestNoHeader, showProgress))
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	var result *ingest.Result
	if ingestTemplate != "" {
		store, err := mapping.NewTemplateStore(config.TemplateDir())
		if err != nil {
			os.Exit(handler.HandleError(err))
		}
		tpl, err := store.Load(ingestTemplate)
		if err != nil {
			os.Exit(handler.HandleError(err))
		}
		result, err = ingester.IngestFileWithMapping(context.Background(), ingestFile, tpl.Columns)
		if err != nil {
			os.Exit(handler.HandleError(err))
		}
	} else {
		result, err = ingester.IngestFile(context.Background(), ingestFile)
		if err != nil {
			os.Exit(handler.HandleError(err))
		}
	}

	rep, err := reporter.NewReporter(config.CreateReportConfig(outputFormat))
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := rep.WriteIngestReport(out, result); err != nil {
		os.Exit(handler.HandleError(err))
	}

	return nil
}
