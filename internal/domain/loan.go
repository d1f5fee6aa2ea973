package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusDraft             = "draft"
	LoanStatusRequested         = "requested"
	LoanStatusApproved          = "approved"
	LoanStatusPartiallyApproved = "partially_approved"
	LoanStatusActive            = "active"
	LoanStatusClosed            = "closed"
	LoanStatusRejected          = "rejected"
)

const (
	LoanKindPersonal        = "personal_loan"
	LoanKindSalaryAdvance   = "salary_advance"
	LoanKindFestivalAdvance = "festival_advance"
	LoanKindEmergencyAid    = "emergency_aid"
)

// Loan represents one loan/advance request for one employee, from draft
// through repayment. The schedule stays empty until approval.
type Loan struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	EmployeeRef      string              `json:"employee_ref" db:"employee_ref"`
	Kind             string              `json:"kind" db:"kind"`
	RequestedAmount  decimal.Decimal     `json:"requested_amount" db:"requested_amount"`
	ApprovedAmount   decimal.NullDecimal `json:"approved_amount" db:"approved_amount"`
	InterestRate     decimal.Decimal     `json:"interest_rate_percent_annual" db:"interest_rate"`
	TenureMonths     int                 `json:"tenure_months" db:"tenure_months"`
	Status           string              `json:"status" db:"status"`
	Reason           string              `json:"reason" db:"reason"`
	RemainingBalance decimal.Decimal     `json:"remaining_balance" db:"remaining_balance"`
	Schedule         []*InstallmentRecord `json:"schedule,omitempty" db:"-"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the loan can accept no further events.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusClosed || l.Status == LoanStatusRejected
}

// Clone returns a deep copy, schedule included. Lifecycle events are
// applied to a clone and swapped in only after a successful persist.
func (l *Loan) Clone() *Loan {
	copied := *l
	if l.Schedule != nil {
		copied.Schedule = make([]*InstallmentRecord, len(l.Schedule))
		for i, rec := range l.Schedule {
			r := *rec
			copied.Schedule[i] = &r
		}
	}
	return &copied
}

// ValidKind reports whether kind is one of the supported loan categories.
func ValidKind(kind string) bool {
	switch kind {
	case LoanKindPersonal, LoanKindSalaryAdvance, LoanKindFestivalAdvance, LoanKindEmergencyAid:
		return true
	}
	return false
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	EmployeeRef     string           `json:"employee_ref" validate:"required"`
	Kind            string           `json:"kind" validate:"required,oneof=personal_loan salary_advance festival_advance emergency_aid"`
	RequestedAmount decimal.Decimal  `json:"requested_amount" validate:"required"`
	InterestRate    *decimal.Decimal `json:"interest_rate_percent_annual,omitempty"`
	TenureMonths    int              `json:"tenure_months" validate:"required,gt=0"`
	Reason          string           `json:"reason" validate:"required"`
	// SubmitNow stores the loan as requested instead of draft.
	SubmitNow bool `json:"submit_now"`
}

type ApproveLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	// Rate and tenure default to the values fixed at request time.
	InterestRate *decimal.Decimal `json:"interest_rate_percent_annual,omitempty"`
	TenureMonths *int             `json:"tenure_months,omitempty"`
}

type RejectLoanRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RecordPaymentRequest struct {
	InstallmentNumber int `json:"installment_number" validate:"required,gt=0"`
}

type EditLoanRequest struct {
	RequestedAmount decimal.Decimal `json:"requested_amount" validate:"required"`
	TenureMonths    int             `json:"tenure_months" validate:"required,gt=0"`
}

// ListFilter narrows ListLoans results. Zero values match everything;
// string matches are case-insensitive substring matches.
type ListFilter struct {
	EmployeeRef string
	Status      string
	IDContains  string
}

type OutstandingResponse struct {
	LoanID      string          `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type ScheduleResponse struct {
	LoanID   string               `json:"loan_id"`
	Schedule []*InstallmentRecord `json:"schedule"`
}

// OverdueLoan summarizes a loan with past-due pending installments, as
// reported by the reminder scheduler.
type OverdueLoan struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	EmployeeRef   string          `json:"employee_ref"`
	OverdueCount  int             `json:"overdue_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}
