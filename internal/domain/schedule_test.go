package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrpulse/loan-engine/pkg/amortization"
)

func TestBuildScheduleZeroInterest(t *testing.T) {
	loanID := uuid.New()
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	schedule := BuildSchedule(loanID, decimal.NewFromInt(50000), decimal.Zero, 5, start)

	require.Len(t, schedule, 5)
	for i, rec := range schedule {
		assert.Equal(t, i+1, rec.InstallmentNumber)
		assert.Equal(t, loanID, rec.LoanID)
		assert.Equal(t, InstallmentStatusPending, rec.Status)
		assert.Nil(t, rec.PaidDate)
		assert.True(t, rec.Amount.Equal(decimal.NewFromInt(10000)),
			"installment %d: expected 10000, got %s", i+1, rec.Amount)
		assert.Equal(t, start.AddDate(0, i+1, 0), rec.DueDate)
	}
}

func TestBuildScheduleSumsToRoundedTotal(t *testing.T) {
	tests := []struct {
		name       string
		principal  decimal.Decimal
		rate       decimal.Decimal
		termMonths int
	}{
		{name: "interest bearing 12 months", principal: decimal.NewFromInt(100000), rate: decimal.NewFromFloat(10.5), termMonths: 12},
		{name: "awkward division", principal: decimal.NewFromInt(100000), rate: decimal.Zero, termMonths: 3},
		{name: "small advance", principal: decimal.NewFromInt(7500), rate: decimal.NewFromFloat(6.0), termMonths: 7},
		{name: "long tenure", principal: decimal.NewFromInt(450000), rate: decimal.NewFromFloat(12.25), termMonths: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := BuildSchedule(uuid.New(), tt.principal, tt.rate, tt.termMonths, time.Now())
			require.Len(t, schedule, tt.termMonths)

			terms := amortization.Compute(tt.principal, tt.rate, tt.termMonths)
			expectedTotal := amortization.RoundCurrency(terms.TotalRepayment)

			sum := decimal.Zero
			for _, rec := range schedule {
				sum = sum.Add(rec.Amount)
			}

			// the last installment absorbs the rounding remainder
			assert.True(t, sum.Equal(expectedTotal),
				"schedule sums to %s, expected %s", sum, expectedTotal)

			perInstallment := amortization.RoundCurrency(terms.Installment)
			for _, rec := range schedule[:len(schedule)-1] {
				assert.True(t, rec.Amount.Equal(perInstallment))
			}
		})
	}
}

func TestBuildScheduleClampsDueDates(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	schedule := BuildSchedule(uuid.New(), decimal.NewFromInt(30000), decimal.Zero, 3, start)

	require.Len(t, schedule, 3)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
}

func TestUnpaidTotal(t *testing.T) {
	schedule := BuildSchedule(uuid.New(), decimal.NewFromInt(40000), decimal.Zero, 4, time.Now())

	assert.True(t, UnpaidTotal(schedule).Equal(decimal.NewFromInt(40000)))

	now := time.Now()
	schedule[0].Status = InstallmentStatusPaid
	schedule[0].PaidDate = &now

	assert.True(t, UnpaidTotal(schedule).Equal(decimal.NewFromInt(30000)))
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	pastDue := &InstallmentRecord{DueDate: now.AddDate(0, -1, 0), Status: InstallmentStatusPending}
	future := &InstallmentRecord{DueDate: now.AddDate(0, 1, 0), Status: InstallmentStatusPending}
	paidLate := &InstallmentRecord{DueDate: now.AddDate(0, -1, 0), Status: InstallmentStatusPaid}

	assert.Equal(t, InstallmentStatusOverdue, pastDue.EffectiveStatus(now))
	assert.Equal(t, InstallmentStatusPending, future.EffectiveStatus(now))
	assert.Equal(t, InstallmentStatusPaid, paidLate.EffectiveStatus(now))

	// derived only: the stored status stays pending
	assert.Equal(t, InstallmentStatusPending, pastDue.Status)
}
