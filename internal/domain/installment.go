package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	// InstallmentStatusOverdue is derived from due date at query time and
	// never stored, so there is a single source of truth.
	InstallmentStatusOverdue = "overdue"
)

// InstallmentRecord is one scheduled repayment. InstallmentNumber is
// 1-based and unique within a loan; ordering is chronological.
type InstallmentRecord struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	PaidDate          *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Status            string          `json:"status" db:"status"`
}

// EffectiveStatus returns the stored status, substituting overdue for
// pending installments whose due date has passed.
func (r *InstallmentRecord) EffectiveStatus(now time.Time) string {
	if r.Status == InstallmentStatusPending && r.DueDate.Before(now) {
		return InstallmentStatusOverdue
	}
	return r.Status
}

// Payable reports whether the installment can still accept a payment.
func (r *InstallmentRecord) Payable() bool {
	return r.Status == InstallmentStatusPending
}
