package mapping

import (
	"sort"
)

// Requirement names used in ValidationResult.MissingFields. Amount and
// direction are representations rather than single tags: each can be
// satisfied by more than one column combination.
const (
	MissingDate        = "date"
	MissingDescription = "description"
	MissingAmount      = "amount"
	MissingDirection   = "direction"
)

// ValidationResult is the aggregate outcome of validating a column mapping.
// It is pure data; an invalid mapping is reported, never raised.
type ValidationResult struct {
	IsValid         bool       `json:"isValid"`
	MissingFields   []string   `json:"missingFields,omitempty"`
	HasDuplicates   bool       `json:"hasDuplicates"`
	DuplicateValues []FieldTag `json:"duplicateValues,omitempty"`
}

// Validate checks a column mapping for completeness and internal consistency.
//
// A mapping is valid when it has a date column, a description column, a valid
// amount representation (an amount column, or both debit and credit columns),
// a valid direction representation (debit and credit columns, or amount plus
// type), and no field tag other than FieldOther mapped by more than one
// column. The check is pure and order-independent over the mapping's entries.
func Validate(m ColumnMapping) ValidationResult {
	counts := make(map[FieldTag]int)
	for _, e := range m {
		if e.Field != FieldOther {
			counts[e.Field]++
		}
	}

	hasDate := counts[FieldDate] > 0
	hasDescription := counts[FieldDescription] > 0
	hasAmount := counts[FieldAmount] > 0
	hasDebit := counts[FieldDebit] > 0
	hasCredit := counts[FieldCredit] > 0
	hasType := counts[FieldType] > 0

	validAmount := hasAmount || (hasDebit && hasCredit)
	validDirection := (hasDebit && hasCredit) || (hasAmount && hasType)

	result := ValidationResult{}

	if !hasDate {
		result.MissingFields = append(result.MissingFields, MissingDate)
	}
	if !hasDescription {
		result.MissingFields = append(result.MissingFields, MissingDescription)
	}
	if !validAmount {
		result.MissingFields = append(result.MissingFields, MissingAmount)
	}
	if !validDirection {
		result.MissingFields = append(result.MissingFields, MissingDirection)
	}

	for tag, n := range counts {
		if n > 1 {
			result.HasDuplicates = true
			result.DuplicateValues = append(result.DuplicateValues, tag)
		}
	}
	sort.Slice(result.DuplicateValues, func(i, j int) bool {
		return result.DuplicateValues[i] < result.DuplicateValues[j]
	})

	result.IsValid = hasDate && hasDescription && validAmount && validDirection && !result.HasDuplicates

	return result
}

// Missing reports whether a named requirement is unmet.
func (r ValidationResult) Missing(name string) bool {
	for _, f := range r.MissingFields {
		if f == name {
			return true
		}
	}
	return false
}

// HasDuplicate reports whether a specific field tag is mapped more than once.
func (r ValidationResult) HasDuplicate(tag FieldTag) bool {
	for _, d := range r.DuplicateValues {
		if d == tag {
			return true
		}
	}
	return false
}
