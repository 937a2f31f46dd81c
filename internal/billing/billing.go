// Package billing computes billing dates for club memberships that change tier.
package billing

import (
	"time"
)

const day = 24 * time.Hour

// Change is the outcome of moving a membership to another tier
type Change struct {
	// NextBillingDate is the date the member is billed next after the change
	NextBillingDate time.Time
	// AddedDaysFromCurrentTier are the unused days of the current cycle carried over on upgrade
	AddedDaysFromCurrentTier int
	// Upgrade is true when the change takes effect immediately and is charged now
	Upgrade bool
}

// NextBillingDate computes the billing date for moving a membership paying
// currentAmount with the given next billing date to a tier priced targetAmount.
//
// An upgrade (strictly higher price) restarts the cycle today, one month out,
// plus the days left on the current cycle. A downgrade or lateral move keeps
// the current billing date and is applied then.
func NextBillingDate(currentAmount int64, currentNextBilling time.Time, targetAmount int64, now time.Time) Change {
	if targetAmount <= currentAmount {
		return Change{NextBillingDate: currentNextBilling}
	}

	today := Today(now)
	remaining := RemainingDays(currentNextBilling, today)

	return Change{
		NextBillingDate:          AddMonth(today).AddDate(0, 0, remaining),
		AddedDaysFromCurrentTier: remaining,
		Upgrade:                  true,
	}
}

// FirstBillingDate is the next billing date of a membership started at now
func FirstBillingDate(now time.Time) time.Time {
	return AddMonth(Today(now))
}

// Today truncates t to midnight of its UTC calendar day
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RemainingDays returns the whole days between today and nextBilling, never negative
func RemainingDays(nextBilling, today time.Time) int {
	diff := Today(nextBilling).Sub(Today(today))
	if diff <= 0 {
		return 0
	}
	return int(diff / day)
}

// AddMonth adds one calendar month, clamping to the last day of the target
// month instead of overflowing (Jan 31 becomes Feb 28 or 29).
func AddMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfNext := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
