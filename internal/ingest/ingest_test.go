package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"xpns-ingestion-service/internal/mapping"
	"xpns-ingestion-service/internal/models"
	"xpns-ingestion-service/pkg/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp CSV: %v", err)
	}
	return path
}

func TestIngestFile_EndToEnd(t *testing.T) {
	path := writeTempCSV(t, `Date,Description,Amount,Type
2024-01-15,Coffee Shop,12.50,debit
2024-01-16,Paycheck,"2,500.00",deposit
`)

	ig, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := ig.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if !result.Validation.IsValid {
		t.Fatalf("Expected inferred mapping to validate, got %v", result.Validation.MissingFields)
	}
	if len(result.Transform.Transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d (errors: %v)",
			len(result.Transform.Transactions), result.Transform.Errors)
	}

	first := result.Transform.Transactions[0]
	if first.Description != "Coffee Shop" || first.Amount != 1250 || first.Type != models.TransactionTypeDebit {
		t.Errorf("Unexpected first transaction: %s", first.String())
	}
	second := result.Transform.Transactions[1]
	if second.Amount != 250000 || second.Type != models.TransactionTypeCredit {
		t.Errorf("Unexpected second transaction: %s", second.String())
	}

	if result.Stats.DataRows != 2 {
		t.Errorf("Expected 2 data rows, got %d", result.Stats.DataRows)
	}
}

func TestIngestFile_HeaderlessSynthesizesPlaceholders(t *testing.T) {
	path := writeTempCSV(t, "2024-01-15,Coffee Shop,12.50\n")

	cfg := DefaultConfig()
	cfg.HasHeader = false
	ig, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := ig.IngestFile(context.Background(), path)
	if err == nil {
		t.Fatal("Expected mapping gate to reject the all-other placeholder mapping")
	}

	// The result still carries the placeholder headers and validation detail.
	if result == nil {
		t.Fatal("Expected a result alongside the mapping error")
	}
	want := []string{"Column 1", "Column 2", "Column 3"}
	if len(result.Headers) != len(want) {
		t.Fatalf("Expected %d placeholder headers, got %v", len(want), result.Headers)
	}
	for i := range want {
		if result.Headers[i] != want[i] {
			t.Errorf("Header %d: expected %q, got %q", i, want[i], result.Headers[i])
		}
	}
	if result.Validation.IsValid {
		t.Error("Expected placeholder mapping to be invalid")
	}
}

func TestIngestFileWithMapping_Headerless(t *testing.T) {
	path := writeTempCSV(t, "2024-01-15,Coffee Shop,12.50,debit\n")

	cfg := DefaultConfig()
	cfg.HasHeader = false
	ig, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m := mapping.ColumnMapping{
		{Column: "Column 1", Field: mapping.FieldDate},
		{Column: "Column 2", Field: mapping.FieldDescription},
		{Column: "Column 3", Field: mapping.FieldAmount},
		{Column: "Column 4", Field: mapping.FieldType},
	}
	result, err := ig.IngestFileWithMapping(context.Background(), path, m)
	if err != nil {
		t.Fatalf("IngestFileWithMapping failed: %v", err)
	}
	if len(result.Transform.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d (errors: %v)",
			len(result.Transform.Transactions), result.Transform.Errors)
	}
}

func TestIngestFileWithMapping_NilMapping(t *testing.T) {
	ig, _ := New(nil)
	if _, err := ig.IngestFileWithMapping(context.Background(), "whatever.csv", nil); err == nil {
		t.Error("Expected error for nil mapping")
	}
}

func TestIngestFile_InvalidMappingGate(t *testing.T) {
	// Headers that infer to nothing useful must stop before transformation.
	path := writeTempCSV(t, "Ref,Branch\nr1,b1\n")

	ig, _ := New(nil)
	result, err := ig.IngestFile(context.Background(), path)
	if err == nil {
		t.Fatal("Expected mapping error")
	}

	ingestErr, ok := errors.AsIngestError(err)
	if !ok || ingestErr.Code != errors.CodeInvalidMapping {
		t.Errorf("Expected invalid_mapping, got %v", err)
	}
	if result.Transform != nil {
		t.Error("Expected no transform result when the mapping gate rejects")
	}
}

func TestIngestFile_MissingFile(t *testing.T) {
	ig, _ := New(nil)
	_, err := ig.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	ingestErr, ok := errors.AsIngestError(err)
	if !ok || ingestErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected file_not_found, got %v", err)
	}
}

func TestIngestFile_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	ig, _ := New(nil)
	_, err := ig.IngestFile(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error for empty file")
	}

	ingestErr, ok := errors.AsIngestError(err)
	if !ok || ingestErr.Code != errors.CodeEmptyFile {
		t.Errorf("Expected empty_file, got %v", err)
	}
}

func TestIngestFile_RowErrorsCollected(t *testing.T) {
	path := writeTempCSV(t, `Date,Description,Amount,Type
not-a-date,Coffee Shop,12.50,debit
2024-01-16,Lunch,,debit
2024-01-17,Dinner,30.00,debit
`)

	ig, _ := New(nil)
	result, err := ig.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}

	// Bad rows are reported, good rows still land.
	if len(result.Transform.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transform.Transactions))
	}
	if len(result.Transform.Errors) == 0 {
		t.Error("Expected row errors to be collected")
	}
}

func TestIngestFile_Cancelled(t *testing.T) {
	path := writeTempCSV(t, "Date,Description,Amount,Type\n2024-01-15,Coffee,12.50,debit\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ig, _ := New(nil)
	if _, err := ig.IngestFile(ctx, path); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
