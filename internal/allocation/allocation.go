// Package allocation computes how one transaction's amount is divided among
// group members: keep it to yourself, assign it to one peer, split it equally,
// or split it by custom percentages or fixed amounts.
//
// All arithmetic is in integer minor units. Equal splits distribute the
// remainder one unit at a time to the first members in the group's canonical
// order, so no unit is ever lost or duplicated. Negative monetary inputs are
// taken as absolute values; direction belongs to the transaction, not to the
// split.
package allocation

import (
	"fmt"

	"xpns-ingestion-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// Method says how member portions are expressed.
type Method string

const (
	// MethodPercentage means portions are percentage points (0-100).
	MethodPercentage Method = "percentage"
	// MethodFixed means portions are minor-unit amounts.
	MethodFixed Method = "fixed"
)

// IsValid checks if the method is supported
func (m Method) IsValid() bool {
	return m == MethodPercentage || m == MethodFixed
}

// Member is one participant's share of an allocation. Portion is a percentage
// point value under MethodPercentage and a minor-unit amount under
// MethodFixed; Amount is always minor units.
type Member struct {
	User    string          `json:"user"`
	Portion decimal.Decimal `json:"portion"`
	Amount  int64           `json:"amount"`
}

// Allocation is a breakdown of one transaction's amount across members.
type Allocation struct {
	Method  Method   `json:"method"`
	Members []Member `json:"members"`
}

// Total returns the sum of member amounts in minor units.
func (a Allocation) Total() int64 {
	var sum int64
	for _, m := range a.Members {
		sum += m.Amount
	}
	return sum
}

// Share is one member's requested percentage in a custom percentage split.
// Two-decimal precision is allowed (e.g. 33.33).
type Share struct {
	User    string
	Percent decimal.Decimal
}

// FixedEntry is one member's requested minor-unit amount in a custom fixed
// split.
type FixedEntry struct {
	User   string
	Amount int64
}

var oneHundred = decimal.NewFromInt(100)

// SelfOnly allocates the whole amount to the current user.
func SelfOnly(user string, total int64) Allocation {
	return wholeAmount(user, total)
}

// SinglePeer allocates the whole amount to one chosen peer. Identical shape
// to SelfOnly; only the target user differs.
func SinglePeer(peer string, total int64) Allocation {
	return wholeAmount(peer, total)
}

func wholeAmount(user string, total int64) Allocation {
	return Allocation{
		Method: MethodPercentage,
		Members: []Member{{
			User:    user,
			Portion: oneHundred,
			Amount:  abs(total),
		}},
	}
}

// EqualSplit divides total evenly across members in their canonical order.
// With base = total/N and extra = total%N, the first extra members receive
// base+1 and the rest base, so the member amounts always sum to total exactly
// and differ by at most one minor unit.
func EqualSplit(total int64, members []string) (Allocation, error) {
	if len(members) == 0 {
		return Allocation{}, errors.AllocationError(errors.CodeEmptyGroup, "equal split", nil)
	}

	total = abs(total)
	n := int64(len(members))
	base := total / n
	extra := total % n

	a := Allocation{
		Method:  MethodFixed,
		Members: make([]Member, len(members)),
	}
	for i, user := range members {
		amount := base
		if int64(i) < extra {
			amount++
		}
		a.Members[i] = Member{
			User:    user,
			Portion: decimal.NewFromInt(amount),
			Amount:  amount,
		}
	}

	return a, nil
}

// Percentage computes a custom split where each member's amount is
// round(total * percent / 100). Percent values outside 0-100 are rejected;
// whether the shares and amounts actually add up is Check's job, run before
// submission.
func Percentage(total int64, shares []Share) (Allocation, error) {
	if len(shares) == 0 {
		return Allocation{}, errors.AllocationError(errors.CodeEmptyGroup, "percentage split", nil)
	}

	total = abs(total)
	totalDec := decimal.NewFromInt(total)

	a := Allocation{
		Method:  MethodPercentage,
		Members: make([]Member, len(shares)),
	}
	for i, share := range shares {
		if share.Percent.IsNegative() || share.Percent.GreaterThan(oneHundred) {
			return Allocation{}, errors.AllocationError(
				errors.CodeInvalidShare,
				fmt.Sprintf("share for '%s' is %s", share.User, share.Percent.String()),
				nil,
			)
		}
		amount := totalDec.Mul(share.Percent).Div(oneHundred).Round(0).IntPart()
		a.Members[i] = Member{
			User:    share.User,
			Portion: share.Percent,
			Amount:  amount,
		}
	}

	return a, nil
}

// Fixed builds a custom split from caller-supplied minor-unit amounts.
// Whether they sum to the transaction total is Check's job.
func Fixed(total int64, entries []FixedEntry) (Allocation, error) {
	if len(entries) == 0 {
		return Allocation{}, errors.AllocationError(errors.CodeEmptyGroup, "fixed split", nil)
	}

	a := Allocation{
		Method:  MethodFixed,
		Members: make([]Member, len(entries)),
	}
	for i, entry := range entries {
		amount := abs(entry.Amount)
		a.Members[i] = Member{
			User:    entry.User,
			Portion: decimal.NewFromInt(amount),
			Amount:  amount,
		}
	}

	return a, nil
}

// Check is the pre-submission guard: member amounts must sum exactly to the
// transaction total, and percentage portions must sum to exactly 100. A
// mismatch rejects the allocation; a match passes.
func Check(a Allocation, total int64) error {
	if len(a.Members) == 0 {
		return errors.AllocationError(errors.CodeEmptyGroup, string(a.Method), nil)
	}

	if a.Method == MethodPercentage {
		portions := decimal.Zero
		for _, m := range a.Members {
			portions = portions.Add(m.Portion)
		}
		if !portions.Equal(oneHundred) {
			return errors.AllocationError(
				errors.CodeInvalidShare,
				fmt.Sprintf("portions sum to %s, expected 100", portions.String()),
				nil,
			)
		}
	}

	total = abs(total)
	if sum := a.Total(); sum != total {
		return errors.AllocationError(
			errors.CodeAllocationMismatch,
			fmt.Sprintf("member amounts sum to %d, transaction total is %d", sum, total),
			nil,
		)
	}

	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
