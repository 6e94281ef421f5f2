package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// StatementGenerator creates sample statement CSV files for manual testing of
// the ingest pipeline.
type StatementGenerator struct {
	rng *rand.Rand
}

var descriptions = []string{
	"Coffee Shop",
	"Grocery Store",
	"Gas Station",
	"Online Transfer",
	"Restaurant",
	"Pharmacy",
	"Monthly Subscription",
	"ATM Withdrawal",
	"Paycheck",
	"Utility Bill",
}

func main() {
	var (
		count      = flag.Int("count", 100, "Number of data rows to generate")
		output     = flag.String("output", "generated/statement.csv", "Output file path")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		layout     = flag.String("layout", "amount", "Column layout: amount (single amount+type) or debit-credit")
		noHeader   = flag.Bool("no-header", false, "Omit the header row")
		duplicates = flag.Int("duplicates", 0, "Number of rows to repeat verbatim")
	)
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	gen := &StatementGenerator{rng: rand.New(rand.NewSource(*seed))}

	var err error
	switch *layout {
	case "amount":
		err = gen.writeAmountLayout(*output, *count, *duplicates, !*noHeader)
	case "debit-credit":
		err = gen.writeDebitCreditLayout(*output, *count, !*noHeader)
	default:
		log.Fatalf("Unknown layout %q (use amount or debit-credit)", *layout)
	}
	if err != nil {
		log.Fatalf("Failed to generate statement: %v", err)
	}

	fmt.Printf("Generated %d rows in %s (layout=%s, seed=%d)\n", *count, *output, *layout, *seed)
}

func (g *StatementGenerator) writeAmountLayout(path string, count, duplicates int, header bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if header {
		if err := w.Write([]string{"Date", "Description", "Amount", "Type", "Notes"}); err != nil {
			return err
		}
	}

	var rows [][]string
	for i := 0; i < count; i++ {
		txType := "debit"
		if g.rng.Float64() < 0.25 {
			txType = "credit"
		}
		rows = append(rows, []string{
			g.randomDate(),
			descriptions[g.rng.Intn(len(descriptions))],
			g.randomAmount(),
			txType,
			"ref " + strconv.Itoa(1000+g.rng.Intn(9000)),
		})
	}

	for i := 0; i < duplicates && len(rows) > 0; i++ {
		rows = append(rows, rows[g.rng.Intn(len(rows))])
	}

	return w.WriteAll(rows)
}

func (g *StatementGenerator) writeDebitCreditLayout(path string, count int, header bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if header {
		if err := w.Write([]string{"Date", "Description", "Debit", "Credit"}); err != nil {
			return err
		}
	}

	for i := 0; i < count; i++ {
		debit, credit := "", ""
		if g.rng.Float64() < 0.25 {
			credit = g.randomAmount()
		} else {
			debit = g.randomAmount()
		}
		record := []string{
			g.randomDate(),
			descriptions[g.rng.Intn(len(descriptions))],
			debit,
			credit,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func (g *StatementGenerator) randomDate() string {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, g.rng.Intn(365)).Format("2006-01-02")
}

func (g *StatementGenerator) randomAmount() string {
	cents := 50 + g.rng.Int63n(500000)
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
