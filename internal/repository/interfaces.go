package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hrpulse/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations. The
// schedule travels with the loan: GetByID and List return loans with
// their installments loaded, Update persists loan and installments
// together (last write wins per loan id).
type LoanRepository interface {
	// Create stores a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan and its schedule by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update replaces the stored loan and schedule atomically
	Update(ctx context.Context, loan *domain.Loan) error

	// List returns loans matching the filter in insertion order
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment audit records
type PaymentRepository interface {
	// Create stores a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByLoanID retrieves all payments for a loan, oldest first
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)
}
