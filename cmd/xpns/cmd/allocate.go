package cmd

import (
	"fmt"
	"os"
	"strings"

	"xpns-ingestion-service/cmd/xpns/config"
	"xpns-ingestion-service/internal/allocation"
	"xpns-ingestion-service/internal/models"
	"xpns-ingestion-service/internal/reporter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Flags for the allocate command
var (
	allocTotal   string
	allocSplit   string
	allocUser    string
	allocPeer    string
	allocMembers []string
	allocShares  []string
	allocAmounts []string
)

// allocateCmd represents the allocate command
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute how a transaction amount is split among group members",
	Long: `Allocate divides a transaction's amount among group members using one
of the supported strategies. Amounts are entered in major units (dollars) and
computed in integer minor units (cents); equal splits distribute the remainder
one cent at a time so the split always adds up exactly.

Examples:
  # Keep the whole amount on your own account
  xpns allocate --total 42.00 --split self --user alice

  # Assign the whole amount to one peer
  xpns allocate --total 42.00 --split peer --peer bob

  # Equal split with exact remainder distribution
  xpns allocate --total 100.00 --split equal --members alice,bob,carol

  # Custom percentage split (must sum to exactly 100)
  xpns allocate --total 80.00 --split percentage --shares alice=62.5,bob=37.5

  # Custom fixed split (must sum to exactly the total)
  xpns allocate --total 80.00 --split fixed --amounts alice=50.00,bob=30.00`,

	PreRunE: validateAllocateFlags,
	RunE:    runAllocate,
}

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().StringVar(&allocTotal, "total", "", "transaction total in major units, e.g. 12.50 (required)")
	allocateCmd.Flags().StringVar(&allocSplit, "split", "equal", "split strategy: self, peer, equal, percentage, fixed")
	allocateCmd.Flags().StringVar(&allocUser, "user", "", "current user for --split self")
	allocateCmd.Flags().StringVar(&allocPeer, "peer", "", "target user for --split peer")
	allocateCmd.Flags().StringSliceVar(&allocMembers, "members", nil, "comma-separated group members in canonical order")
	allocateCmd.Flags().StringSliceVar(&allocShares, "shares", nil, "per-member percentages, e.g. alice=62.5,bob=37.5")
	allocateCmd.Flags().StringSliceVar(&allocAmounts, "amounts", nil, "per-member major-unit amounts, e.g. alice=50.00,bob=30.00")
	allocateCmd.Flags().StringVar(&outputFormat, "output-format", "console", "output format: console, json, csv")

	allocateCmd.MarkFlagRequired("total")
}

func validateAllocateFlags(cmd *cobra.Command, args []string) error {
	switch allocSplit {
	case "self":
		if allocUser == "" {
			return fmt.Errorf("--split self requires --user")
		}
	case "peer":
		if allocPeer == "" {
			return fmt.Errorf("--split peer requires --peer")
		}
	case "equal":
		if len(allocMembers) == 0 {
			return fmt.Errorf("--split equal requires --members")
		}
	case "percentage":
		if len(allocShares) == 0 {
			return fmt.Errorf("--split percentage requires --shares")
		}
	case "fixed":
		if len(allocAmounts) == 0 {
			return fmt.Errorf("--split fixed requires --amounts")
		}
	default:
		return fmt.Errorf("invalid split strategy '%s': must be self, peer, equal, percentage, or fixed", allocSplit)
	}

	return nil
}

func runAllocate(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	total, err := models.ParseMajorUnits(allocTotal)
	if err != nil {
		return fmt.Errorf("invalid --total: %w", err)
	}

	var alloc allocation.Allocation
	switch allocSplit {
	case "self":
		alloc = allocation.SelfOnly(allocUser, total)
	case "peer":
		alloc = allocation.SinglePeer(allocPeer, total)
	case "equal":
		alloc, err = allocation.EqualSplit(total, allocMembers)
	case "percentage":
		var shares []allocation.Share
		shares, err = parseShares(allocShares)
		if err == nil {
			alloc, err = allocation.Percentage(total, shares)
		}
	case "fixed":
		var entries []allocation.FixedEntry
		entries, err = parseFixedEntries(allocAmounts)
		if err == nil {
			alloc, err = allocation.Fixed(total, entries)
		}
	}
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	// Custom splits are rejected before submission when they do not add up.
	if allocSplit == "percentage" || allocSplit == "fixed" {
		if err := allocation.Check(alloc, total); err != nil {
			os.Exit(handler.HandleError(err))
		}
	}

	rep, err := reporter.NewReporter(config.CreateReportConfig(outputFormat))
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	if err := rep.WriteAllocationReport(os.Stdout, alloc, total); err != nil {
		os.Exit(handler.HandleError(err))
	}

	return nil
}

func parseShares(raw []string) ([]allocation.Share, error) {
	shares := make([]allocation.Share, 0, len(raw))
	for _, item := range raw {
		user, value, err := splitPair(item)
		if err != nil {
			return nil, err
		}
		percent, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage '%s' for '%s'", value, user)
		}
		shares = append(shares, allocation.Share{User: user, Percent: percent})
	}
	return shares, nil
}

func parseFixedEntries(raw []string) ([]allocation.FixedEntry, error) {
	entries := make([]allocation.FixedEntry, 0, len(raw))
	for _, item := range raw {
		user, value, err := splitPair(item)
		if err != nil {
			return nil, err
		}
		amount, err := models.ParseMajorUnits(value)
		if err != nil {
			return nil, fmt.Errorf("invalid amount '%s' for '%s'", value, user)
		}
		entries = append(entries, allocation.FixedEntry{User: user, Amount: amount})
	}
	return entries, nil
}

func splitPair(item string) (string, string, error) {
	parts := strings.SplitN(item, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", fmt.Errorf("invalid member entry '%s': expected name=value", item)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
