package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/hrpulse/loan-engine/pkg/errors"
)

// Lifecycle events
const (
	EventSubmit        = "submit"
	EventApprove       = "approve"
	EventReject        = "reject"
	EventDisburse      = "disburse"
	EventRecordPayment = "record_payment"
	EventEdit          = "edit"
)

// allowedEvents is the transition table. A (status, event) pair missing
// here is rejected with an InvalidTransition error; closed and rejected
// accept nothing.
var allowedEvents = map[string]map[string]bool{
	LoanStatusDraft: {
		EventSubmit: true,
	},
	LoanStatusRequested: {
		EventApprove: true,
		EventReject:  true,
		EventEdit:    true,
	},
	LoanStatusApproved: {
		EventDisburse: true,
	},
	LoanStatusPartiallyApproved: {
		EventDisburse: true,
	},
	LoanStatusActive: {
		EventRecordPayment: true,
	},
	LoanStatusClosed:   {},
	LoanStatusRejected: {},
}

func (l *Loan) ensureEvent(event string) error {
	if !allowedEvents[l.Status][event] {
		return customError.WrapInvalidTransition(l.Status, event)
	}
	return nil
}

// Submit moves a draft into the approval queue.
func (l *Loan) Submit() error {
	if err := l.ensureEvent(EventSubmit); err != nil {
		return err
	}
	if !l.RequestedAmount.IsPositive() {
		return customError.WrapValidation("requested amount must be greater than zero")
	}
	if l.Reason == "" {
		return customError.WrapValidation("reason is required")
	}
	if l.TenureMonths <= 0 {
		return customError.WrapValidation("tenure months must be greater than zero")
	}

	l.Status = LoanStatusRequested
	return nil
}

// Approve grants the loan for amount, which may be less than requested.
// Rate and tenure overrides are optional and default to the values fixed
// at request time. The repayment schedule is generated here; due dates
// run monthly from now.
func (l *Loan) Approve(amount decimal.Decimal, rateOverride *decimal.Decimal, tenureOverride *int, now time.Time) error {
	if err := l.ensureEvent(EventApprove); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return customError.WrapValidation("approved amount must be greater than zero")
	}
	if amount.GreaterThan(l.RequestedAmount) {
		return customError.WrapValidation(
			fmt.Sprintf("approved amount %s exceeds requested amount %s", amount, l.RequestedAmount))
	}

	rate := l.InterestRate
	if rateOverride != nil {
		if rateOverride.IsNegative() {
			return customError.WrapValidation("interest rate must not be negative")
		}
		rate = *rateOverride
	}
	tenure := l.TenureMonths
	if tenureOverride != nil {
		if *tenureOverride <= 0 {
			return customError.WrapValidation("tenure months must be greater than zero")
		}
		tenure = *tenureOverride
	}

	l.ApprovedAmount = decimal.NewNullDecimal(amount)
	l.InterestRate = rate
	l.TenureMonths = tenure
	l.Schedule = BuildSchedule(l.ID, amount, rate, tenure, now)
	l.RemainingBalance = UnpaidTotal(l.Schedule)

	if amount.LessThan(l.RequestedAmount) {
		l.Status = LoanStatusPartiallyApproved
	} else {
		l.Status = LoanStatusApproved
	}
	return nil
}

// Reject declines a requested loan. Terminal.
func (l *Loan) Reject(reason string) error {
	if err := l.ensureEvent(EventReject); err != nil {
		return err
	}
	if reason == "" {
		return customError.WrapValidation("rejection reason is required")
	}

	l.Reason = reason
	l.Status = LoanStatusRejected
	return nil
}

// Disburse marks an approved loan as funded.
func (l *Loan) Disburse() error {
	if err := l.ensureEvent(EventDisburse); err != nil {
		return err
	}
	if len(l.Schedule) == 0 {
		return customError.WrapValidation("loan has no repayment schedule")
	}

	l.Status = LoanStatusActive
	return nil
}

// RecordPayment settles one installment and closes the loan once nothing
// remains unpaid.
func (l *Loan) RecordPayment(installmentNumber int, now time.Time) (*InstallmentRecord, error) {
	if err := l.ensureEvent(EventRecordPayment); err != nil {
		return nil, err
	}

	var target *InstallmentRecord
	for _, rec := range l.Schedule {
		if rec.InstallmentNumber == installmentNumber {
			target = rec
			break
		}
	}
	if target == nil {
		return nil, customError.NewBusinessError(
			customError.ErrCodeValidation,
			fmt.Sprintf("installment %d does not exist", installmentNumber),
			customError.ErrInstallmentNotFound,
		)
	}
	if !target.Payable() {
		return nil, customError.NewBusinessError(
			customError.ErrCodeValidation,
			fmt.Sprintf("installment %d is already paid", installmentNumber),
			customError.ErrInstallmentAlreadyPaid,
		)
	}

	paidAt := now
	target.Status = InstallmentStatusPaid
	target.PaidDate = &paidAt

	l.RemainingBalance = UnpaidTotal(l.Schedule)
	if l.RemainingBalance.IsZero() {
		l.Status = LoanStatusClosed
	}
	return target, nil
}

// Edit rewrites the requested terms of a loan still awaiting a decision.
// No schedule exists yet, so nothing is regenerated.
func (l *Loan) Edit(newAmount decimal.Decimal, newTenureMonths int) error {
	if err := l.ensureEvent(EventEdit); err != nil {
		return err
	}
	if !newAmount.IsPositive() {
		return customError.WrapValidation("requested amount must be greater than zero")
	}
	if newTenureMonths <= 0 {
		return customError.WrapValidation("tenure months must be greater than zero")
	}

	l.RequestedAmount = newAmount
	l.TenureMonths = newTenureMonths
	return nil
}
