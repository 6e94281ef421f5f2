package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"plain", "12.50", "12.5", false},
		{"currency symbol", "$12.50", "12.5", false},
		{"thousand separators", "$1,234.50", "1234.5", false},
		{"internal whitespace", " 1 234.50 ", "1234.5", false},
		{"negative", "-45.00", "-45", false},
		{"integer", "100", "100", false},
		{"empty", "", "", true},
		{"only symbols", "$,", "", true},
		{"not a number", "abc", "", true},
		{"double decimal", "1.2.3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAmount(%q) expected error, got %s", tt.input, d.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if d.String() != tt.expected {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, d.String(), tt.expected)
			}
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"exact cents", "12.50", 1250},
		{"bank statement", "1234.50", 123450},
		{"negative uses absolute value", "-45.00", 4500},
		{"rounds half up", "0.125", 13},
		{"rounds down", "0.124", 12},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.input, err)
			}
			if got := ToMinorUnits(d); got != tt.expected {
				t.Errorf("ToMinorUnits(%s) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseMajorUnits(t *testing.T) {
	got, err := ParseMajorUnits("$1,234.50")
	if err != nil {
		t.Fatalf("ParseMajorUnits failed: %v", err)
	}
	if got != 123450 {
		t.Errorf("ParseMajorUnits($1,234.50) = %d, want 123450", got)
	}

	if _, err := ParseMajorUnits("not money"); err == nil {
		t.Error("Expected error for unparseable input")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"iso date", "2024-01-15", false},
		{"iso datetime", "2024-01-15 10:30:00", false},
		{"rfc3339", "2024-01-15T10:30:00Z", false},
		{"us format", "01/15/2024", false},
		{"slash date", "2024/01/15", false},
		{"month name", "Jan 15, 2024", false},
		{"padded", "  2024-01-15  ", false},
		{"empty", "", true},
		{"garbage", "not a date", true},
		{"number only", "20240115999", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ParseDate(%q) expected error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input    string
		expected TransactionType
		matched  bool
	}{
		{"debit", TransactionTypeDebit, true},
		{"DEBIT", TransactionTypeDebit, true},
		{"Direct Debit", TransactionTypeDebit, true},
		{"withdrawal", TransactionTypeDebit, true},
		{"ATM Withdrawal", TransactionTypeDebit, true},
		{"credit", TransactionTypeCredit, true},
		{"Credit Card Payment", TransactionTypeCredit, true},
		{"deposit", TransactionTypeCredit, true},
		{"Direct Deposit", TransactionTypeCredit, true},
		{"transfer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTransactionType(tt.input)
			if ok != tt.matched {
				t.Fatalf("ParseTransactionType(%q) matched=%v, want %v", tt.input, ok, tt.matched)
			}
			if ok && got != tt.expected {
				t.Errorf("ParseTransactionType(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTransaction_ISODate(t *testing.T) {
	tx := Transaction{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	if got := tx.ISODate(); got != "2024-01-15T00:00:00.000Z" {
		t.Errorf("ISODate() = %q, want 2024-01-15T00:00:00.000Z", got)
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	tx := &Transaction{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Coffee Shop",
		Type:        TransactionTypeDebit,
		Amount:      1250,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"date":"2024-01-15T00:00:00.000Z"`) {
		t.Errorf("Expected ISO date in JSON, got %s", data)
	}

	var decoded Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Equals(tx) {
		t.Errorf("Round trip mismatch: got %s, want %s", decoded.String(), tx.String())
	}
}

func TestRawRow_Cell(t *testing.T) {
	positional := PositionalRow([]string{"2024-01-15", "Coffee", "12.50"})
	if got := positional.Cell("ignored", 1); got != "Coffee" {
		t.Errorf("Positional Cell(1) = %q, want Coffee", got)
	}
	if got := positional.Cell("ignored", 5); got != "" {
		t.Errorf("Out-of-range cell should be empty, got %q", got)
	}
	if got := positional.Cell("ignored", -1); got != "" {
		t.Errorf("Negative index should be empty, got %q", got)
	}

	keyed := KeyedRow(map[string]string{"Date": "2024-01-15", "Description": "Coffee"})
	if got := keyed.Cell("Description", 99); got != "Coffee" {
		t.Errorf("Keyed Cell(Description) = %q, want Coffee", got)
	}
	if got := keyed.Cell("Missing", 0); got != "" {
		t.Errorf("Missing key should be empty, got %q", got)
	}
}

func TestRawRow_IsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		row      RawRow
		expected bool
	}{
		{"empty positional", PositionalRow([]string{"", "  ", "\t"}), true},
		{"non-empty positional", PositionalRow([]string{"", "x"}), false},
		{"zero cells", PositionalRow(nil), true},
		{"empty keyed", KeyedRow(map[string]string{"a": "", "b": "  "}), true},
		{"non-empty keyed", KeyedRow(map[string]string{"a": "x"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.IsEmpty(); got != tt.expected {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.expected)
			}
		})
	}
}
