/*
balance.go - Accrual and availability computation

PURPOSE:
  Answers "how many PTO hours does this employee have?" from three inputs:
  the user (hire date), the request history, and an injected now. Pure
  function: no I/O, no side effects, no caching - callers recompute on
  every read.

ACCRUAL MODEL:
  Hours accrue at a flat weekly rate from the hire date. Weeks are whole
  weeks (floor division on calendar days), so nothing accrues until seven
  full days have elapsed.

ANNIVERSARY RESET:
  Once the current year's hire anniversary has passed (strictly), the
  accrual basis REBASES: available becomes weeks-since-anniversary at the
  same rate, replacing (not adding to) the since-hire figure. Accrued is
  then back-derived as used + available so the displayed numbers stay
  mutually consistent.

NEGATIVE BALANCES:
  used counts every Approved request, favors included. A favor granted
  beyond the accrued balance drives available negative; that is a valid
  business state and is never clamped.

SEE ALSO:
  - ledger.go: the request collection this reads from
  - request.go: how Hours is computed at creation
*/
package pto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualRatePerWeek is the company accrual policy: hours of PTO earned
// per full week of tenure. A configuration constant, applied uniformly to
// every employee.
var AccrualRatePerWeek = decimal.NewFromFloat(1.54)

// ComputeBalance derives a balance snapshot for user at now.
//
// requests may be the full cross-user collection; only the user's own
// Approved requests contribute to used. Pending and Denied never count.
// Total function: there is no error path, only numbers.
func ComputeBalance(user User, requests []PTORequest, now time.Time) Balance {
	weeksSinceHire := WeeksBetween(user.HireDate, now)
	accrued := decimal.NewFromInt(int64(weeksSinceHire)).Mul(AccrualRatePerWeek)

	used := decimal.Zero
	for _, r := range requests {
		if r.UserID == user.ID && r.Status == StatusApproved {
			used = used.Add(r.Hours)
		}
	}

	currentYear := now.Year()
	anniversary := AnniversaryInYear(user.HireDate, currentYear)

	available := accrued.Sub(used)
	lastResetYear := currentYear - 1

	if now.After(anniversary) {
		// The accrual clock rebased at the anniversary: only weeks since
		// then are spendable, and accrued is back-derived to keep
		// accrued == used + available.
		weeksSinceAnniversary := WeeksBetween(anniversary, now)
		available = decimal.NewFromInt(int64(weeksSinceAnniversary)).Mul(AccrualRatePerWeek)
		accrued = used.Add(available)
		lastResetYear = currentYear
	}

	return Balance{
		Accrued:       accrued,
		Used:          used,
		Available:     available,
		LastResetYear: lastResetYear,
	}
}
