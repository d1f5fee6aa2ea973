package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrpulse/loan-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

// NewLoanRepository returns a Postgres-backed LoanRepository.
func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, employee_ref, kind, requested_amount, approved_amount, interest_rate, tenure_months, status, reason, remaining_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.EmployeeRef,
		loan.Kind,
		loan.RequestedAmount,
		loan.ApprovedAmount,
		loan.InterestRate,
		loan.TenureMonths,
		loan.Status,
		loan.Reason,
		loan.RemainingBalance,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, employee_ref, kind, requested_amount, approved_amount, interest_rate, tenure_months, status, reason, remaining_balance, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	schedule, err := r.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Schedule = schedule

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE loans
		SET requested_amount = $2, approved_amount = $3, interest_rate = $4, tenure_months = $5, status = $6, reason = $7, remaining_balance = $8, updated_at = $9
		WHERE id = $1
	`

	_, err = tx.ExecContext(ctx, query,
		loan.ID,
		loan.RequestedAmount,
		loan.ApprovedAmount,
		loan.InterestRate,
		loan.TenureMonths,
		loan.Status,
		loan.Reason,
		loan.RemainingBalance,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	// Replace the schedule wholesale; last write per loan id wins.
	if _, err = tx.ExecContext(ctx, `DELETE FROM loan_installments WHERE loan_id = $1`, loan.ID); err != nil {
		return err
	}

	insert := `
		INSERT INTO loan_installments (id, loan_id, installment_number, due_date, amount, paid_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, rec := range loan.Schedule {
		_, err = tx.ExecContext(ctx, insert,
			rec.ID,
			rec.LoanID,
			rec.InstallmentNumber,
			rec.DueDate,
			rec.Amount,
			rec.PaidDate,
			rec.Status,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Loan, error) {
	query := `
		SELECT id, employee_ref, kind, requested_amount, approved_amount, interest_rate, tenure_months, status, reason, remaining_balance, created_at, updated_at
		FROM loans
	`

	var conditions []string
	var args []interface{}

	if filter.EmployeeRef != "" {
		args = append(args, "%"+filter.EmployeeRef+"%")
		conditions = append(conditions, "employee_ref ILIKE $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, strings.ToLower(filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.IDContains != "" {
		args = append(args, "%"+filter.IDContains+"%")
		conditions = append(conditions, "CAST(id AS TEXT) ILIKE $"+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		schedule, err := r.getSchedule(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		loan.Schedule = schedule
	}

	return loans, nil
}

func (r *loanRepository) getSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.InstallmentRecord, error) {
	query := `
		SELECT id, loan_id, installment_number, due_date, amount, paid_date, status
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY installment_number
	`

	var schedule []*domain.InstallmentRecord
	if err := r.db.SelectContext(ctx, &schedule, query, loanID); err != nil {
		return nil, err
	}

	return schedule, nil
}
