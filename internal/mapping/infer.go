package mapping

import (
	"fmt"
	"strings"
)

// Infer guesses an initial column mapping from raw header names using
// substring heuristics, first match wins: "date", then "desc", then
// "amount"/"amt", then "type". Headers matching nothing map to FieldOther.
//
// The result is a suggestion. It makes no duplicate guarantee; callers edit
// it and then gate on Validate before transforming rows.
func Infer(headers []string) ColumnMapping {
	m := make(ColumnMapping, 0, len(headers))
	for _, header := range headers {
		m = append(m, Entry{Column: header, Field: inferField(header)})
	}
	return m
}

func inferField(header string) FieldTag {
	lower := strings.ToLower(header)

	switch {
	case strings.Contains(lower, "date"):
		return FieldDate
	case strings.Contains(lower, "desc"):
		return FieldDescription
	case strings.Contains(lower, "amount"), strings.Contains(lower, "amt"):
		return FieldAmount
	case strings.Contains(lower, "type"):
		return FieldType
	default:
		return FieldOther
	}
}

// PlaceholderHeaders synthesizes positional column names for a headerless
// upload: "Column 1" through "Column n". Inferring a mapping from these maps
// every column to FieldOther, leaving assignment entirely to the caller.
func PlaceholderHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column %d", i+1)
	}
	return headers
}
