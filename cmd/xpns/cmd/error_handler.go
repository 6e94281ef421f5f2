package cmd

import (
	"fmt"
	"os"
	"strings"

	"xpns-ingestion-service/pkg/errors"
	"xpns-ingestion-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages. It returns
// the process exit code to use.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if ingestErr, ok := errors.AsIngestError(err); ok {
		return h.handleIngestError(ingestErr)
	}

	return h.handleGenericError(err)
}

// handleIngestError handles IngestError with detailed context
func (h *CLIErrorHandler) handleIngestError(err *errors.IngestError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-IngestError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file`

	case errors.CategoryParse:
		return `Parse error help:
• Verify the file is a comma-delimited CSV
• Ensure the file uses UTF-8 encoding
• Check that the export includes a header row, or pass --no-header`

	case errors.CategoryMapping:
		return `Mapping error help:
• Map a date column and a description column
• Map an amount column, or both a debit and a credit column
• Amount-only mappings also need a type column for direction
• Each field except 'other' may be assigned to only one column`

	case errors.CategoryAllocation:
		return `Allocation error help:
• Percentages must be between 0 and 100 and sum to exactly 100
• Fixed amounts must sum to exactly the transaction total
• Select at least one member to split with`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'xpns --help' to see all available options`

	default:
		return `For more help:
• Use 'xpns --help' for general help
• Use 'xpns ingest --help' or 'xpns allocate --help' for command help`
	}
}
