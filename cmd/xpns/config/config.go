// Package config builds component configurations from CLI flags, keeping
// flag-to-config translation out of the command handlers.
package config

import (
	"os"
	"path/filepath"

	"xpns-ingestion-service/internal/ingest"
	"xpns-ingestion-service/internal/reporter"

	"github.com/spf13/viper"
)

// CreateIngestConfig creates an ingest configuration from CLI flags.
func CreateIngestConfig(hasHeader, showProgress bool) *ingest.Config {
	cfg := ingest.DefaultConfig()
	cfg.HasHeader = hasHeader
	cfg.ShowProgress = showProgress
	return cfg
}

// CreateReportConfig creates a report configuration for the specified output
// format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	cfg := reporter.DefaultReportConfig()

	switch format {
	case "json":
		cfg.Format = reporter.FormatJSON
	case "csv":
		cfg.Format = reporter.FormatCSV
		// Errors and warnings stay on stderr; CSV output is data only.
		cfg.IncludeErrors = false
		cfg.IncludeWarnings = false
	default:
		cfg.Format = reporter.FormatConsole
	}

	return cfg
}

// TemplateDir resolves where mapping templates live: the XPNS_TEMPLATE_DIR
// environment variable or config key if set, otherwise a directory under the
// user's config root.
func TemplateDir() string {
	if dir := viper.GetString("template_dir"); dir != "" {
		return dir
	}

	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "xpns", "templates")
}
