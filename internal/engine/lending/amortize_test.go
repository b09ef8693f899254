package lending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank-portal/internal/domain/loan"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildSchedule_EqualInstallment(t *testing.T) {
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	entries, err := BuildSchedule(d("12000.00"), d("0.12"), 12, start, loan.MethodEqualInstallment)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	// Fixed payment for 12000 at 12% over 12 months is 1066.19
	firstPayment := entries[0].PrincipalDue.Add(entries[0].InterestDue)
	assert.True(t, firstPayment.Equal(d("1066.19")), "payment = %s", firstPayment)

	// First period interest is one month on the full principal
	assert.True(t, entries[0].InterestDue.Equal(d("120.00")), "interest = %s", entries[0].InterestDue)

	// Principal portions sum exactly to the loan amount
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.PrincipalDue)
	}
	assert.True(t, total.Equal(d("12000.00")), "principal sum = %s", total)

	// Interest declines as the balance amortizes
	assert.True(t, entries[11].InterestDue.LessThan(entries[0].InterestDue))

	for i, e := range entries {
		assert.Equal(t, i+1, e.PeriodNo)
		assert.Equal(t, "SCHEDULED", e.Status)
	}
}

func TestBuildSchedule_EqualInstallment_ZeroRate(t *testing.T) {
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	entries, err := BuildSchedule(d("1200.00"), decimal.Zero, 12, start, loan.MethodEqualInstallment)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	total := decimal.Zero
	for _, e := range entries {
		assert.True(t, e.InterestDue.IsZero(), "period %d interest = %s", e.PeriodNo, e.InterestDue)
		total = total.Add(e.PrincipalDue)
	}
	assert.True(t, total.Equal(d("1200.00")))
}

func TestBuildSchedule_EqualPrincipal(t *testing.T) {
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	entries, err := BuildSchedule(d("12000.00"), d("0.12"), 12, start, loan.MethodEqualPrincipal)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	// Fixed principal portion with interest on the pre-payment balance
	assert.True(t, entries[0].PrincipalDue.Equal(d("1000.00")))
	assert.True(t, entries[0].InterestDue.Equal(d("120.00")))
	assert.True(t, entries[1].InterestDue.Equal(d("110.00")))
	assert.True(t, entries[11].InterestDue.Equal(d("10.00")))

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.PrincipalDue)
	}
	assert.True(t, total.Equal(d("12000.00")))
}

func TestBuildSchedule_FinalPeriodAbsorbsRounding(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	// 1000 / 3 does not divide evenly in cents
	entries, err := BuildSchedule(d("1000.00"), decimal.Zero, 3, start, loan.MethodEqualPrincipal)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].PrincipalDue.Equal(d("333.33")))
	assert.True(t, entries[1].PrincipalDue.Equal(d("333.33")))
	assert.True(t, entries[2].PrincipalDue.Equal(d("333.34")))
}

func TestBuildSchedule_Validation(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		term      int
		method    loan.Method
		wantErr   error
	}{
		{"zero principal", decimal.Zero, d("0.1"), 12, loan.MethodEqualInstallment, loan.ErrInvalidPrincipal},
		{"negative principal", d("-5"), d("0.1"), 12, loan.MethodEqualInstallment, loan.ErrInvalidPrincipal},
		{"zero term", d("1000"), d("0.1"), 0, loan.MethodEqualInstallment, loan.ErrInvalidTerm},
		{"negative rate", d("1000"), d("-0.1"), 12, loan.MethodEqualInstallment, loan.ErrInvalidRate},
		{"bad method", d("1000"), d("0.1"), 12, loan.Method("BALLOON"), loan.ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := BuildSchedule(tt.principal, tt.rate, tt.term, start, tt.method)
			assert.Nil(t, entries)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildSchedule_DueDatesClampToMonthEnd(t *testing.T) {
	// Originating on Jan 31 of a leap year
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	entries, err := BuildSchedule(d("1200.00"), decimal.Zero, 4, start, loan.MethodEqualPrincipal)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), entries[1].DueDate)
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), entries[2].DueDate)
	assert.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), entries[3].DueDate)
}

func TestAddMonthsClamped_NonLeapYear(t *testing.T) {
	jan31 := time.Date(2023, time.January, 31, 10, 30, 0, 0, time.UTC)

	got := addMonthsClamped(jan31, 1)
	assert.Equal(t, time.Date(2023, time.February, 28, 10, 30, 0, 0, time.UTC), got)

	// Crossing a year boundary
	got = addMonthsClamped(jan31, 13)
	assert.Equal(t, time.Date(2024, time.February, 29, 10, 30, 0, 0, time.UTC), got)
}

func TestOutstanding(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("accrues simple interest over a full year", func(t *testing.T) {
		asOf := start.Add(365 * 24 * time.Hour)
		got := Outstanding(d("12000.00"), d("0.12"), start, asOf, decimal.Zero)
		assert.True(t, got.Equal(d("13440.00")), "outstanding = %s", got)
	})

	t.Run("subtracts prior repayments", func(t *testing.T) {
		asOf := start.Add(365 * 24 * time.Hour)
		got := Outstanding(d("12000.00"), d("0.12"), start, asOf, d("3440.00"))
		assert.True(t, got.Equal(d("10000.00")), "outstanding = %s", got)
	})

	t.Run("floors at zero on overpayment", func(t *testing.T) {
		asOf := start.Add(30 * 24 * time.Hour)
		got := Outstanding(d("12000.00"), d("0.12"), start, asOf, d("20000.00"))
		assert.True(t, got.IsZero())
	})

	t.Run("clamps negative elapsed time", func(t *testing.T) {
		asOf := start.Add(-48 * time.Hour)
		got := Outstanding(d("12000.00"), d("0.12"), start, asOf, decimal.Zero)
		assert.True(t, got.Equal(d("12000.00")), "outstanding = %s", got)
	})

	t.Run("no interest at zero rate", func(t *testing.T) {
		asOf := start.Add(365 * 24 * time.Hour)
		got := Outstanding(d("500.00"), decimal.Zero, start, asOf, d("100.00"))
		assert.True(t, got.Equal(d("400.00")), "outstanding = %s", got)
	})
}
