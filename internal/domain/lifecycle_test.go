package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/hrpulse/loan-engine/pkg/errors"
)

func newTestLoan(status string) *Loan {
	now := time.Now()
	return &Loan{
		ID:              uuid.New(),
		EmployeeRef:     "EMP-1042",
		Kind:            LoanKindPersonal,
		RequestedAmount: decimal.NewFromInt(80000),
		InterestRate:    decimal.Zero,
		TenureMonths:    4,
		Status:          status,
		Reason:          "medical expenses",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSubmit(t *testing.T) {
	t.Run("draft becomes requested", func(t *testing.T) {
		loan := newTestLoan(LoanStatusDraft)

		require.NoError(t, loan.Submit())
		assert.Equal(t, LoanStatusRequested, loan.Status)
	})

	t.Run("empty reason rejected", func(t *testing.T) {
		loan := newTestLoan(LoanStatusDraft)
		loan.Reason = ""

		err := loan.Submit()
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
		assert.Equal(t, LoanStatusDraft, loan.Status)
	})

	t.Run("submit of requested loan is invalid", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Submit()
		assert.True(t, customError.IsCode(err, customError.ErrCodeInvalidTransition))
	})
}

func TestApprove(t *testing.T) {
	now := time.Now()

	t.Run("full amount yields approved", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		require.NoError(t, loan.Approve(decimal.NewFromInt(80000), nil, nil, now))

		assert.Equal(t, LoanStatusApproved, loan.Status)
		require.True(t, loan.ApprovedAmount.Valid)
		assert.True(t, loan.ApprovedAmount.Decimal.Equal(decimal.NewFromInt(80000)))
		require.Len(t, loan.Schedule, 4)
		assert.True(t, loan.RemainingBalance.Equal(decimal.NewFromInt(80000)))
	})

	t.Run("partial amount yields partially approved", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		require.NoError(t, loan.Approve(decimal.NewFromInt(60000), nil, nil, now))

		assert.Equal(t, LoanStatusPartiallyApproved, loan.Status)
		assert.True(t, loan.ApprovedAmount.Decimal.Equal(decimal.NewFromInt(60000)))

		// schedule is built from the approved amount, not the requested one
		sum := decimal.Zero
		for _, rec := range loan.Schedule {
			sum = sum.Add(rec.Amount)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(60000)), "schedule sums to %s", sum)
	})

	t.Run("amount above requested rejected", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Approve(decimal.NewFromInt(90000), nil, nil, now)
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
		assert.Equal(t, LoanStatusRequested, loan.Status)
		assert.Empty(t, loan.Schedule)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Approve(decimal.Zero, nil, nil, now)
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
	})

	t.Run("rate and tenure overrides apply", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)
		rate := decimal.NewFromFloat(10.5)
		tenure := 12

		require.NoError(t, loan.Approve(decimal.NewFromInt(80000), &rate, &tenure, now))

		assert.True(t, loan.InterestRate.Equal(rate))
		assert.Equal(t, 12, loan.TenureMonths)
		assert.Len(t, loan.Schedule, 12)
	})

	t.Run("approve of draft is invalid", func(t *testing.T) {
		loan := newTestLoan(LoanStatusDraft)

		err := loan.Approve(decimal.NewFromInt(80000), nil, nil, now)
		assert.True(t, customError.IsCode(err, customError.ErrCodeInvalidTransition))
	})
}

func TestReject(t *testing.T) {
	t.Run("overwrites reason and is terminal", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		require.NoError(t, loan.Reject("exceeds department budget"))

		assert.Equal(t, LoanStatusRejected, loan.Status)
		assert.Equal(t, "exceeds department budget", loan.Reason)
		assert.Empty(t, loan.Schedule)
	})

	t.Run("empty reason rejected", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Reject("")
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
		assert.Equal(t, LoanStatusRequested, loan.Status)
	})
}

func TestDisburse(t *testing.T) {
	now := time.Now()

	t.Run("approved becomes active", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)
		require.NoError(t, loan.Approve(decimal.NewFromInt(80000), nil, nil, now))

		require.NoError(t, loan.Disburse())
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("partially approved becomes active", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)
		require.NoError(t, loan.Approve(decimal.NewFromInt(40000), nil, nil, now))

		require.NoError(t, loan.Disburse())
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("disburse of requested loan is invalid", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Disburse()
		assert.True(t, customError.IsCode(err, customError.ErrCodeInvalidTransition))
	})
}

func TestRecordPayment(t *testing.T) {
	now := time.Now()

	activeLoan := func(t *testing.T, tenure int) *Loan {
		t.Helper()
		loan := newTestLoan(LoanStatusRequested)
		loan.TenureMonths = tenure
		require.NoError(t, loan.Approve(decimal.NewFromInt(40000), nil, nil, now))
		require.NoError(t, loan.Disburse())
		return loan
	}

	t.Run("loan closes only after the last installment", func(t *testing.T) {
		loan := activeLoan(t, 2)

		rec, err := loan.RecordPayment(1, now)
		require.NoError(t, err)
		assert.Equal(t, InstallmentStatusPaid, rec.Status)
		assert.NotNil(t, rec.PaidDate)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.True(t, loan.RemainingBalance.Equal(decimal.NewFromInt(20000)))

		_, err = loan.RecordPayment(2, now)
		require.NoError(t, err)
		assert.Equal(t, LoanStatusClosed, loan.Status)
		assert.True(t, loan.RemainingBalance.IsZero())
	})

	t.Run("payments arrive out of order", func(t *testing.T) {
		loan := activeLoan(t, 4)

		_, err := loan.RecordPayment(3, now)
		require.NoError(t, err)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.True(t, loan.RemainingBalance.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("unknown installment number", func(t *testing.T) {
		loan := activeLoan(t, 2)

		_, err := loan.RecordPayment(7, now)
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
		assert.ErrorIs(t, err, customError.ErrInstallmentNotFound)
	})

	t.Run("already paid installment", func(t *testing.T) {
		loan := activeLoan(t, 2)

		_, err := loan.RecordPayment(1, now)
		require.NoError(t, err)

		_, err = loan.RecordPayment(1, now)
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
		assert.ErrorIs(t, err, customError.ErrInstallmentAlreadyPaid)
	})
}

func TestEdit(t *testing.T) {
	t.Run("requested loan accepts new terms", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		require.NoError(t, loan.Edit(decimal.NewFromInt(50000), 10))

		assert.True(t, loan.RequestedAmount.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, 10, loan.TenureMonths)
		assert.Empty(t, loan.Schedule)
	})

	t.Run("approved loan cannot be edited", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)
		require.NoError(t, loan.Approve(decimal.NewFromInt(80000), nil, nil, time.Now()))

		err := loan.Edit(decimal.NewFromInt(50000), 10)
		assert.True(t, customError.IsCode(err, customError.ErrCodeInvalidTransition))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		loan := newTestLoan(LoanStatusRequested)

		err := loan.Edit(decimal.Zero, 10)
		assert.True(t, customError.IsCode(err, customError.ErrCodeValidation))
	})
}

func TestTerminalStatesRejectAllEvents(t *testing.T) {
	now := time.Now()
	events := []struct {
		name  string
		apply func(*Loan) error
	}{
		{name: EventSubmit, apply: func(l *Loan) error { return l.Submit() }},
		{name: EventApprove, apply: func(l *Loan) error { return l.Approve(decimal.NewFromInt(1000), nil, nil, now) }},
		{name: EventReject, apply: func(l *Loan) error { return l.Reject("nope") }},
		{name: EventDisburse, apply: func(l *Loan) error { return l.Disburse() }},
		{name: EventRecordPayment, apply: func(l *Loan) error { _, err := l.RecordPayment(1, now); return err }},
		{name: EventEdit, apply: func(l *Loan) error { return l.Edit(decimal.NewFromInt(1000), 2) }},
	}

	for _, status := range []string{LoanStatusClosed, LoanStatusRejected} {
		for _, event := range events {
			t.Run(status+"/"+event.name, func(t *testing.T) {
				loan := newTestLoan(status)
				before := loan.Clone()

				err := event.apply(loan)
				assert.True(t, customError.IsCode(err, customError.ErrCodeInvalidTransition),
					"expected invalid transition, got %v", err)
				assert.Equal(t, before.Status, loan.Status)
				assert.Equal(t, before.RequestedAmount, loan.RequestedAmount)
				assert.Len(t, loan.Schedule, len(before.Schedule))
			})
		}
	}
}

func TestClone(t *testing.T) {
	loan := newTestLoan(LoanStatusRequested)
	require.NoError(t, loan.Approve(decimal.NewFromInt(80000), nil, nil, time.Now()))

	copied := loan.Clone()
	copied.Status = LoanStatusActive
	copied.Schedule[0].Status = InstallmentStatusPaid

	assert.Equal(t, LoanStatusApproved, loan.Status)
	assert.Equal(t, InstallmentStatusPending, loan.Schedule[0].Status)
}
