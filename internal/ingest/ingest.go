// Package ingest runs the statement upload pipeline end to end: read a CSV
// file into raw rows, synthesize or read headers, infer or accept a column
// mapping, gate on mapping validation, and transform rows into normalized
// transactions.
//
// The pipeline stages themselves live in mapping and transform and stay pure;
// this package owns the file boundary, cancellation, and per-run bookkeeping.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"xpns-ingestion-service/internal/mapping"
	"xpns-ingestion-service/internal/models"
	"xpns-ingestion-service/internal/transform"
	"xpns-ingestion-service/pkg/errors"
	"xpns-ingestion-service/pkg/logger"

	"github.com/google/uuid"
)

// Config holds configuration for reading statement CSV files.
type Config struct {
	HasHeader        bool `json:"has_header"`
	Delimiter        rune `json:"delimiter"`
	ValidateEncoding bool `json:"validate_encoding"`
	ShowProgress     bool `json:"show_progress"`
}

// DefaultConfig returns a configuration with sensible defaults: a headered,
// comma-delimited, UTF-8 file.
func DefaultConfig() *Config {
	return &Config{
		HasHeader:        true,
		Delimiter:        ',',
		ValidateEncoding: true,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	return nil
}

// Stats holds bookkeeping about one ingest run.
type Stats struct {
	TotalLines int           `json:"total_lines"`
	DataRows   int           `json:"data_rows"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Result is the outcome of one ingest run. Every run gets a RunID so a batch
// of uploaded transactions can be traced back to the file it came from.
type Result struct {
	RunID      string                   `json:"run_id"`
	File       string                   `json:"file"`
	Headers    []string                 `json:"headers"`
	Mapping    mapping.ColumnMapping    `json:"mapping"`
	Validation mapping.ValidationResult `json:"validation"`
	Transform  *transform.Result        `json:"transform,omitempty"`
	Stats      Stats                    `json:"stats"`
}

// Ingester reads statement CSV files and runs them through the pipeline.
type Ingester struct {
	config *Config
	logger logger.Logger
}

// New creates an Ingester with the given configuration.
func New(config *Config) (*Ingester, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "ingest_config", config, err)
	}

	return &Ingester{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("ingest"),
	}, nil
}

// IngestFile runs the full pipeline on a CSV file, inferring the column
// mapping from its headers (or placeholder headers for headerless files).
func (ig *Ingester) IngestFile(ctx context.Context, path string) (*Result, error) {
	return ig.ingest(ctx, path, nil)
}

// IngestFileWithMapping runs the pipeline with a caller-supplied mapping, as
// when a user has edited the inferred suggestion or loaded a saved template.
func (ig *Ingester) IngestFileWithMapping(ctx context.Context, path string, m mapping.ColumnMapping) (*Result, error) {
	if m == nil {
		return nil, errors.MappingError(errors.CodeMissingMapping, path, nil)
	}
	return ig.ingest(ctx, path, m)
}

func (ig *Ingester) ingest(ctx context.Context, path string, m mapping.ColumnMapping) (*Result, error) {
	start := time.Now()

	ig.logger.WithFields(logger.Fields{
		"file":      path,
		"operation": "ingest",
	}).Info("Starting statement ingest")

	headers, rows, totalLines, err := ig.readFile(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:   uuid.NewString(),
		File:    path,
		Headers: headers,
	}
	result.Stats.TotalLines = totalLines
	result.Stats.DataRows = len(rows)

	if m == nil {
		m = mapping.Infer(headers)
	}
	result.Mapping = m
	result.Validation = mapping.Validate(m)

	if !result.Validation.IsValid {
		result.Stats.Elapsed = time.Since(start)
		ig.logger.WithFields(logger.Fields{
			"file":           path,
			"missing_fields": result.Validation.MissingFields,
			"has_duplicates": result.Validation.HasDuplicates,
		}).Warn("Column mapping did not validate")

		return result, errors.MappingError(
			errors.CodeInvalidMapping,
			fmt.Sprintf("missing %v", result.Validation.MissingFields),
			nil,
		).WithContext("file", path)
	}

	transformer := transform.New()
	if ig.config.ShowProgress {
		tracker := logger.NewProgressTracker(logger.ProgressConfig{
			Operation: "transform_rows",
			Total:     int64(len(rows)),
		})
		transformer = transformer.WithProgress(tracker)
		defer tracker.Finish()
	}

	result.Transform = transformer.Rows(rows, m)
	result.Stats.Elapsed = time.Since(start)

	ig.logger.WithFields(logger.Fields{
		"run_id":       result.RunID,
		"file":         path,
		"transactions": len(result.Transform.Transactions),
		"errors":       len(result.Transform.Errors),
		"warnings":     len(result.Transform.Warnings),
		"elapsed":      result.Stats.Elapsed.Round(time.Millisecond).String(),
	}).Info("Statement ingest complete")

	return result, nil
}

// readFile reads the CSV into headers plus positional raw rows. Blank lines
// are kept: the transformer skips them itself while preserving row numbering
// for messages.
func (ig *Ingester) readFile(ctx context.Context, path string) ([]string, []models.RawRow, int, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, 0, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, 0, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, 0, errors.FileError(errors.CodeDirectoryError, path, err)
	}
	defer file.Close()

	if ig.config.ValidateEncoding {
		if err := ig.validateEncoding(file, path); err != nil {
			return nil, nil, 0, err
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, nil, 0, errors.FileError(errors.CodeFileCorrupted, path, err)
		}
	}

	reader := csv.NewReader(file)
	reader.Comma = ig.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var headers []string
	var rows []models.RawRow
	lineNum := 0

	for {
		select {
		case <-ctx.Done():
			return nil, nil, lineNum, errors.Wrap(ctx.Err(), errors.CategoryInternal,
				errors.CodeUnexpectedError, "ingest cancelled")
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, lineNum, errors.ParseError(errors.CodeInvalidFormat, path, lineNum+1, err.Error(), err)
		}
		lineNum++

		if headers == nil {
			if ig.config.HasHeader {
				headers = cleanHeaders(record)
				continue
			}
			headers = mapping.PlaceholderHeaders(len(record))
		}

		rows = append(rows, models.PositionalRow(record))
	}

	if headers == nil {
		return nil, nil, lineNum, errors.ParseError(errors.CodeEmptyFile, path, 0, "", nil)
	}

	return headers, rows, lineNum, nil
}

// validateEncoding checks the first lines of the file for valid UTF-8.
func (ig *Ingester) validateEncoding(file *os.File, path string) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(errors.CodeEncodingError, path, lineNum,
				"invalid UTF-8", fmt.Errorf("invalid UTF-8 encoding detected"))
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	return nil
}

func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}
