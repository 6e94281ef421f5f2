// Package transform converts raw CSV rows into normalized transactions under
// a validated column mapping, accumulating row-indexed errors and warnings
// instead of failing the batch.
//
// The contract follows the upload pipeline's rules exactly:
//   - errors exclude a row from the output, warnings never do
//   - a row needs a valid date, description, and amount to produce a
//     transaction; anything else is advisory
//   - mapping entries are processed in mapping order, so a credit column
//     mapped after a debit column deterministically wins on rows carrying both
//   - suspected duplicates are warned about on the second occurrence and kept
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"xpns-ingestion-service/internal/mapping"
	"xpns-ingestion-service/internal/models"
	"xpns-ingestion-service/pkg/logger"
)

// maxYearDrift is how far a parsed date's year may sit from the current year
// before the row gets a suspicious-date warning.
const maxYearDrift = 50

// Result holds the outcome of transforming one batch of rows. Transactions,
// errors, and warnings each preserve row-ascending order of generation.
type Result struct {
	Transactions []models.Transaction `json:"transactions"`
	Errors       []string             `json:"errors"`
	Warnings     []string             `json:"warnings"`
}

// HasErrors returns true if any row produced an error
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Transformer runs the row transformation with optional progress reporting.
// The transformation itself is a pure function of its inputs; the transformer
// only carries observability.
type Transformer struct {
	logger   logger.Logger
	progress *logger.ProgressTracker
}

// New creates a Transformer.
func New() *Transformer {
	return &Transformer{
		logger: logger.GetGlobalLogger().WithComponent("transform"),
	}
}

// WithProgress attaches a progress tracker that is incremented once per row.
func (t *Transformer) WithProgress(p *logger.ProgressTracker) *Transformer {
	t.progress = p
	return t
}

// Rows is a convenience wrapper around Transformer.Rows.
func Rows(rows []models.RawRow, m mapping.ColumnMapping) *Result {
	return New().Rows(rows, m)
}

// Rows transforms raw rows under the given column mapping. Row numbering in
// messages is 1-based over the input slice; silently skipped blank rows still
// consume a row number.
func (t *Transformer) Rows(rows []models.RawRow, m mapping.ColumnMapping) *Result {
	result := &Result{}
	seen := make(map[string]bool)
	currentYear := time.Now().Year()

	for i, row := range rows {
		rowNum := i + 1

		if t.progress != nil {
			t.progress.Increment()
		}

		if row.IsEmpty() {
			continue
		}

		state := t.transformRow(rowNum, row, m, currentYear, result)

		if !state.hasDate {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing date", rowNum))
		}
		if !state.hasDescription {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing description", rowNum))
		}
		if !state.hasAmount {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: missing amount", rowNum))
		}

		if state.hasDate && state.hasDescription && state.hasAmount {
			sig := signature(&state.tx)
			if seen[sig] {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Row %d: potential duplicate transaction", rowNum))
			}
			seen[sig] = true
			result.Transactions = append(result.Transactions, state.tx)
		}
	}

	t.logger.WithFields(logger.Fields{
		"rows":         len(rows),
		"transactions": len(result.Transactions),
		"errors":       len(result.Errors),
		"warnings":     len(result.Warnings),
	}).Info("Transformed row batch")

	return result
}

// rowState accumulates one row's partially built transaction and which of the
// three required fields have been successfully set.
type rowState struct {
	tx             models.Transaction
	hasDate        bool
	hasDescription bool
	hasAmount      bool
}

func (t *Transformer) transformRow(rowNum int, row models.RawRow, m mapping.ColumnMapping, currentYear int, result *Result) rowState {
	state := rowState{tx: models.Transaction{Type: models.TransactionTypeDebit}}

	for idx, entry := range m {
		if entry.Field == mapping.FieldOther {
			continue
		}

		value := row.Cell(entry.Column, idx)
		if value == "" {
			continue
		}

		switch entry.Field {
		case mapping.FieldDate:
			parsed, err := models.ParseDate(value)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s) %q is not a valid date", rowNum, entry.Column, value))
				continue
			}
			if drift := currentYear - parsed.Year(); drift > maxYearDrift || drift < -maxYearDrift {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Row %d (%s): date %q is more than %d years from today", rowNum, entry.Column, value, maxYearDrift))
			}
			state.tx.Date = parsed
			state.hasDate = true

		case mapping.FieldDescription:
			desc := strings.TrimSpace(value)
			if desc == "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s): description is empty", rowNum, entry.Column))
				continue
			}
			if utf8.RuneCountInString(desc) > models.MaxDescriptionLen {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s): description exceeds %d characters", rowNum, entry.Column, models.MaxDescriptionLen))
				continue
			}
			state.tx.Description = desc
			state.hasDescription = true

		case mapping.FieldSubdescription:
			sub := strings.TrimSpace(value)
			if utf8.RuneCountInString(sub) > models.MaxDescriptionLen {
				// Flagged, not truncated.
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Row %d (%s): subdescription exceeds %d characters", rowNum, entry.Column, models.MaxDescriptionLen))
			}
			state.tx.Subdescription = sub

		case mapping.FieldAmount:
			amount, err := models.ParseAmount(value)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s) %q is not a valid amount", rowNum, entry.Column, value))
				continue
			}
			if amount.Abs().GreaterThan(models.LargeAmountThreshold) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Row %d (%s): amount %q is unusually large", rowNum, entry.Column, value))
			}
			state.tx.Amount = models.ToMinorUnits(amount)
			state.hasAmount = true

		case mapping.FieldDebit:
			amount, err := models.ParseAmount(value)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s) %q is not a valid debit amount", rowNum, entry.Column, value))
				continue
			}
			state.tx.Amount = models.ToMinorUnits(amount)
			state.tx.Type = models.TransactionTypeDebit
			state.hasAmount = true

		case mapping.FieldCredit:
			amount, err := models.ParseAmount(value)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s) %q is not a valid credit amount", rowNum, entry.Column, value))
				continue
			}
			state.tx.Amount = models.ToMinorUnits(amount)
			state.tx.Type = models.TransactionTypeCredit
			state.hasAmount = true

		case mapping.FieldType:
			raw := strings.TrimSpace(value)
			if raw == "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d (%s): type is empty", rowNum, entry.Column))
				continue
			}
			if utf8.RuneCountInString(raw) > models.MaxTypeLen {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Row %d (%s): type exceeds %d characters", rowNum, entry.Column, models.MaxTypeLen))
			}
			if txType, ok := models.ParseTransactionType(raw); ok {
				state.tx.Type = txType
			}

		case mapping.FieldBalance:
			// Running balance carries no transaction field; mapped so the
			// column is acknowledged, then ignored.
		}
	}

	return state
}

// signature identifies a transaction for duplicate detection: two rows with
// the same normalized date, description, and amount are suspected duplicates.
func signature(tx *models.Transaction) string {
	return tx.ISODate() + "|" + tx.Description + "|" + strconv.FormatInt(tx.Amount, 10)
}
