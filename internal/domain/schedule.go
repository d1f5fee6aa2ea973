package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrpulse/loan-engine/pkg/amortization"
)

// BuildSchedule turns approved terms into a concrete installment list.
// Due dates advance one calendar month per installment from startDate,
// clamped to shorter months. Every installment carries the rounded EMI
// except the last, which absorbs the rounding remainder so the schedule
// sums to the rounded total repayment exactly.
func BuildSchedule(loanID uuid.UUID, principal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time) []*InstallmentRecord {
	terms := amortization.Compute(principal, annualRatePercent, termMonths)

	total := amortization.RoundCurrency(terms.TotalRepayment)
	perInstallment := amortization.RoundCurrency(terms.Installment)

	schedule := make([]*InstallmentRecord, 0, termMonths)
	var accumulated decimal.Decimal

	for n := 1; n <= termMonths; n++ {
		amount := perInstallment
		if n == termMonths {
			amount = total.Sub(accumulated)
		}
		accumulated = accumulated.Add(amount)

		schedule = append(schedule, &InstallmentRecord{
			ID:                uuid.New(),
			LoanID:            loanID,
			InstallmentNumber: n,
			DueDate:           amortization.AddMonths(startDate, n),
			Amount:            amount,
			Status:            InstallmentStatusPending,
		})
	}

	return schedule
}

// UnpaidTotal sums the amounts of installments not yet paid.
func UnpaidTotal(schedule []*InstallmentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range schedule {
		if rec.Status != InstallmentStatusPaid {
			total = total.Add(rec.Amount)
		}
	}
	return total
}
