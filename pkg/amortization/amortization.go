// Package amortization computes reducing-balance annuity terms for
// monthly repayment loans.
package amortization

import (
	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)
	// annual percent -> monthly fraction: /100 for percent, /12 for months
	percentMonths = decimal.NewFromInt(1200)
)

// Result holds the outcome of an amortization computation. All values
// carry full decimal precision; rounding happens at schedule time.
type Result struct {
	Installment    decimal.Decimal `json:"installment"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// Compute returns the equal monthly installment, total repayment and total
// interest for the given principal, annual rate (in percent) and term.
//
// A zero principal or non-positive term yields an all-zero Result rather
// than an error; callers render that as "no loan configured". Negative
// inputs are a caller contract violation and are not checked here.
func Compute(principal, annualRatePercent decimal.Decimal, termMonths int) Result {
	if termMonths <= 0 || principal.IsZero() {
		return Result{
			Installment:    decimal.Zero,
			TotalRepayment: decimal.Zero,
			TotalInterest:  decimal.Zero,
		}
	}

	months := decimal.NewFromInt(int64(termMonths))

	// Interest-free advance: straight division, no compounding.
	if annualRatePercent.IsZero() {
		return Result{
			Installment:    principal.Div(months),
			TotalRepayment: principal,
			TotalInterest:  decimal.Zero,
		}
	}

	// EMI = P * r * (1+r)^n / ((1+r)^n - 1), r = annual% / 1200
	r := annualRatePercent.Div(percentMonths)
	compounded := one.Add(r).Pow(months)

	installment := principal.Mul(r).Mul(compounded).Div(compounded.Sub(one))
	total := installment.Mul(months)

	return Result{
		Installment:    installment,
		TotalRepayment: total,
		TotalInterest:  total.Sub(principal),
	}
}

// RoundCurrency rounds an amount to the currency's minor unit.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
