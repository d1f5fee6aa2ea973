package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrpulse/loan-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository returns a Postgres-backed PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO loan_payments (id, loan_id, installment_number, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.InstallmentNumber,
		payment.Amount,
		payment.PaidAt,
	)

	return err
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, installment_number, amount, paid_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY paid_at, installment_number
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}
