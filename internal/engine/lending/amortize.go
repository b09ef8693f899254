package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/loan"
)

var (
	one         = decimal.NewFromInt(1)
	twelve      = decimal.NewFromInt(12)
	daysPerYear = decimal.NewFromInt(365)

	// repayTolerance is the overpayment slack allowed before a repayment is
	// rejected instead of clamped to the outstanding obligation
	repayTolerance = decimal.RequireFromString("0.005")
)

// scheduleStatus is the initial status of every generated schedule entry
const scheduleStatus = "SCHEDULED"

// BuildSchedule generates the full amortization schedule for a loan: one entry
// per month, due dates clamped to the last valid day of the target month, the
// final period absorbing all rounding drift so principal portions sum exactly
// to the loan amount. LoanID is left zero for the caller to fill in.
func BuildSchedule(principal, annualRate decimal.Decimal, termMonths int, start time.Time, method loan.Method) ([]loan.ScheduleEntry, error) {
	if !principal.IsPositive() {
		return nil, loan.ErrInvalidPrincipal
	}
	if termMonths <= 0 {
		return nil, loan.ErrInvalidTerm
	}
	if annualRate.IsNegative() {
		return nil, loan.ErrInvalidRate
	}
	if !loan.ValidMethod(method) {
		return nil, loan.ErrInvalidMethod
	}

	monthlyRate := annualRate.Div(twelve)
	term := decimal.NewFromInt(int64(termMonths))
	entries := make([]loan.ScheduleEntry, 0, termMonths)

	switch method {
	case loan.MethodEqualInstallment:
		// Fixed payment A = P*r*(1+r)^n / ((1+r)^n - 1), or P/n at zero rate
		var payment decimal.Decimal
		if monthlyRate.IsPositive() {
			compounded := one.Add(monthlyRate).Pow(term)
			payment = principal.Mul(monthlyRate).Mul(compounded).Div(compounded.Sub(one)).Round(2)
		} else {
			payment = principal.Div(term).Round(2)
		}

		remaining := principal
		for i := 1; i <= termMonths; i++ {
			var principalDue, interestDue decimal.Decimal
			if i == termMonths {
				// Final period pays off the exact remaining balance; interest
				// is back-derived from the fixed payment to absorb rounding
				principalDue = remaining
				if monthlyRate.IsPositive() {
					interestDue = payment.Sub(principalDue)
				} else {
					interestDue = decimal.Zero
				}
			} else {
				interestDue = remaining.Mul(monthlyRate).Round(2)
				principalDue = payment.Sub(interestDue)
			}
			remaining = remaining.Sub(principalDue)

			entries = append(entries, loan.ScheduleEntry{
				PeriodNo:     i,
				DueDate:      addMonthsClamped(start, i),
				PrincipalDue: principalDue,
				InterestDue:  interestDue,
				Status:       scheduleStatus,
			})
		}

	case loan.MethodEqualPrincipal:
		base := principal.Div(term).Round(2)

		remaining := principal
		for i := 1; i <= termMonths; i++ {
			principalDue := base
			if i == termMonths {
				// Final period absorbs the rounding remainder
				principalDue = remaining
			}
			// Interest accrues on the balance before this period's payment
			interestDue := remaining.Mul(monthlyRate).Round(2)
			remaining = remaining.Sub(principalDue)

			entries = append(entries, loan.ScheduleEntry{
				PeriodNo:     i,
				DueDate:      addMonthsClamped(start, i),
				PrincipalDue: principalDue,
				InterestDue:  interestDue,
				Status:       scheduleStatus,
			})
		}
	}

	return entries, nil
}

// Outstanding computes the live obligation on a loan as of a point in time:
// principal plus simple interest accrued per day over a 365-day year, minus
// everything repaid so far, rounded to cents and floored at zero. This figure
// drives collection; the origination schedule is advisory.
func Outstanding(principal, annualRate decimal.Decimal, start, asOf time.Time, totalPaid decimal.Decimal) decimal.Decimal {
	days := int64(asOf.Sub(start).Hours() / 24)
	if days < 0 {
		days = 0
	}

	interest := principal.Mul(annualRate).Mul(decimal.NewFromInt(days)).Div(daysPerYear)
	outstanding := principal.Add(interest).Sub(totalPaid).Round(2)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// addMonthsClamped adds calendar months, clamping the day-of-month to the last
// valid day of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in a
// leap year) instead of letting the date normalize into the following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
