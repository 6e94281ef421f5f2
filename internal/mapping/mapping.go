// Package mapping defines the column-to-field association that describes how
// an uploaded CSV's columns should be interpreted, plus the heuristics that
// suggest an initial mapping and the validator that gates row transformation.
package mapping

import (
	"fmt"
)

// FieldTag is a semantic field a CSV column can be mapped to.
type FieldTag string

const (
	FieldDate           FieldTag = "date"
	FieldDescription    FieldTag = "description"
	FieldSubdescription FieldTag = "subdescription"
	FieldAmount         FieldTag = "amount"
	FieldDebit          FieldTag = "debit"
	FieldCredit         FieldTag = "credit"
	FieldType           FieldTag = "type"
	FieldBalance        FieldTag = "balance"
	// FieldOther marks a column as ignored. Unlike every other tag it may
	// repeat freely across a mapping.
	FieldOther FieldTag = "other"
)

// String returns the string representation of FieldTag
func (f FieldTag) String() string {
	return string(f)
}

// IsValid checks if the field tag is one of the known tags
func (f FieldTag) IsValid() bool {
	switch f {
	case FieldDate, FieldDescription, FieldSubdescription, FieldAmount,
		FieldDebit, FieldCredit, FieldType, FieldBalance, FieldOther:
		return true
	default:
		return false
	}
}

// Entry associates one CSV column with a semantic field.
type Entry struct {
	Column string   `json:"column" yaml:"column"`
	Field  FieldTag `json:"field" yaml:"field"`
}

// ColumnMapping is an insertion-ordered sequence of column-to-field entries.
// Order matters twice: positional rows resolve a cell by the column's index
// in this sequence, and the row transformer processes fields in this sequence,
// so a later debit/credit entry overwrites an earlier one deterministically.
type ColumnMapping []Entry

// Field returns the tag mapped to a column, if present.
func (m ColumnMapping) Field(column string) (FieldTag, bool) {
	for _, e := range m {
		if e.Column == column {
			return e.Field, true
		}
	}
	return "", false
}

// Index returns the position of a column in the mapping order, or -1.
func (m ColumnMapping) Index(column string) int {
	for i, e := range m {
		if e.Column == column {
			return i
		}
	}
	return -1
}

// Set updates the tag for an existing column or appends a new entry.
func (m *ColumnMapping) Set(column string, field FieldTag) {
	for i, e := range *m {
		if e.Column == column {
			(*m)[i].Field = field
			return
		}
	}
	*m = append(*m, Entry{Column: column, Field: field})
}

// Columns returns the column names in mapping order.
func (m ColumnMapping) Columns() []string {
	cols := make([]string, len(m))
	for i, e := range m {
		cols[i] = e.Column
	}
	return cols
}

// Validate checks structural soundness: non-empty unique column names and
// known field tags. Semantic completeness is the package-level Validate's job.
func (m ColumnMapping) Validate() error {
	seen := make(map[string]bool, len(m))
	for _, e := range m {
		if e.Column == "" {
			return fmt.Errorf("mapping contains an entry with an empty column name")
		}
		if seen[e.Column] {
			return fmt.Errorf("mapping contains column '%s' more than once", e.Column)
		}
		seen[e.Column] = true
		if !e.Field.IsValid() {
			return fmt.Errorf("mapping for column '%s' uses unknown field tag '%s'", e.Column, e.Field)
		}
	}
	return nil
}
