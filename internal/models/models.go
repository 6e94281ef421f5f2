// Package models defines the value objects shared by the ingestion pipeline:
// normalized transactions, raw CSV rows, and the monetary and temporal parsing
// helpers that turn free-form statement text into those values.
//
// All currency is held as integer minor units (cents). Conversions from
// user-entered major-unit strings go through shopspring/decimal so that no
// float64 arithmetic ever touches an amount.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ISOTimeFormat renders instants the way the transactions API expects them,
// millisecond precision with a Z suffix for UTC.
const ISOTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MaxDescriptionLen caps transaction descriptions and subdescriptions.
const MaxDescriptionLen = 500

// MaxTypeLen caps raw transaction-type cell values before a warning is raised.
const MaxTypeLen = 100

// LargeAmountThreshold is the major-unit magnitude above which an amount is
// accepted but flagged as an outlier.
var LargeAmountThreshold = decimal.NewFromInt(1_000_000_000)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	// TransactionTypeDebit represents money leaving the account.
	TransactionTypeDebit TransactionType = "Debit"
	// TransactionTypeCredit represents money entering the account.
	TransactionTypeCredit TransactionType = "Credit"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// ParseTransactionType maps a raw type cell onto a TransactionType using
// case-insensitive keyword containment. The boolean reports whether a keyword
// matched; unmatched values leave the caller's current type untouched.
func ParseTransactionType(s string) (TransactionType, bool) {
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "debit"), strings.Contains(lower, "withdrawal"):
		return TransactionTypeDebit, true
	case strings.Contains(lower, "credit"), strings.Contains(lower, "deposit"):
		return TransactionTypeCredit, true
	default:
		return "", false
	}
}

// Transaction is a normalized bank-statement record produced by the row
// transformer. Amount is non-negative minor units; direction is carried by
// Type, which defaults to Debit.
type Transaction struct {
	Date           time.Time       `json:"-"`
	Description    string          `json:"description"`
	Subdescription string          `json:"subdescription,omitempty"`
	Type           TransactionType `json:"type"`
	Amount         int64           `json:"amount"`
}

// ISODate returns the transaction date as an ISO-8601 instant.
func (t *Transaction) ISODate() string {
	return t.Date.UTC().Format(ISOTimeFormat)
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Description: %s, Type: %s, Amount: %d}",
		t.ISODate(), t.Description, t.Type, t.Amount)
}

// MarshalJSON renders the date in the wire format the transactions API expects.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date string `json:"date"`
		*Alias
	}{
		Date:  t.ISODate(),
		Alias: (*Alias)(t),
	})
}

// UnmarshalJSON parses the wire-format date back into a time.Time.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	parsed, err := time.Parse(ISOTimeFormat, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid transaction date format: %w", err)
	}
	t.Date = parsed

	return nil
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.Date.Equal(other.Date) &&
		t.Description == other.Description &&
		t.Subdescription == other.Subdescription &&
		t.Type == other.Type &&
		t.Amount == other.Amount
}

// RawRow is one CSV line after header splitting. Uploaded files arrive in two
// shapes: positional (an ordered slice of cells) and keyed (column name to
// cell). A single accessor abstracts over both so the transformer never
// duck-types row shapes at call sites.
type RawRow struct {
	cells  []string
	fields map[string]string
	keyed  bool
}

// PositionalRow wraps an ordered slice of cells as a RawRow.
func PositionalRow(cells []string) RawRow {
	return RawRow{cells: cells}
}

// KeyedRow wraps a column-name to cell mapping as a RawRow.
func KeyedRow(fields map[string]string) RawRow {
	return RawRow{fields: fields, keyed: true}
}

// Cell returns the value for a mapped column. Keyed rows are looked up by
// column name; positional rows by the column's index in the mapping order.
// Out-of-range or absent cells return the empty string.
func (r RawRow) Cell(column string, index int) string {
	if r.keyed {
		return r.fields[column]
	}
	if index < 0 || index >= len(r.cells) {
		return ""
	}
	return r.cells[index]
}

// IsEmpty reports whether every cell is empty after trimming, regardless of
// row shape. Fully blank CSV lines are skipped silently by the transformer.
func (r RawRow) IsEmpty() bool {
	if r.keyed {
		for _, v := range r.fields {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	for _, v := range r.cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseAmount parses a monetary cell into a decimal. Currency symbols,
// thousand separators, and whitespace are stripped first, so "$1,234.50"
// parses the same as "1234.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format '%s': %w", s, err)
	}

	return d, nil
}

// ToMinorUnits converts a major-unit decimal to non-negative integer minor
// units, rounding half away from zero. Sign is discarded: direction is the
// type field's job.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ParseMajorUnits converts a user-entered major-unit string ("12.50") to
// minor units via round(abs(value) * 100).
func ParseMajorUnits(s string) (int64, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return ToMinorUnits(d), nil
}

// dateFormats are the calendar formats accepted for date cells, tried in
// order. The list mirrors what banks actually export.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate attempts to parse a date cell using the accepted calendar formats.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, trimmed); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", trimmed, lastErr)
}
