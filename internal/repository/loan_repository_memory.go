package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hrpulse/loan-engine/internal/domain"
	customError "github.com/hrpulse/loan-engine/pkg/errors"
)

// MemoryLoanRepository is an in-memory LoanRepository. It keeps insertion
// order for List and hands out deep copies so callers can stage changes
// without touching the stored record.
type MemoryLoanRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	loans map[uuid.UUID]*domain.Loan
}

// NewMemoryLoanRepository creates an empty in-memory loan repository.
func NewMemoryLoanRepository() *MemoryLoanRepository {
	return &MemoryLoanRepository{
		loans: make(map[uuid.UUID]*domain.Loan),
	}
}

func (r *MemoryLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[loan.ID]; ok {
		return customError.WrapValidation("loan id already exists")
	}

	r.loans[loan.ID] = loan.Clone()
	r.order = append(r.order, loan.ID)
	return nil
}

func (r *MemoryLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loan, ok := r.loans[id]
	if !ok {
		return nil, customError.ErrLoanNotFound
	}
	return loan.Clone(), nil
}

func (r *MemoryLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[loan.ID]; !ok {
		return customError.ErrLoanNotFound
	}

	r.loans[loan.ID] = loan.Clone()
	return nil
}

func (r *MemoryLoanRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Loan, 0, len(r.order))
	for _, id := range r.order {
		loan := r.loans[id]
		if matchesFilter(loan, filter) {
			result = append(result, loan.Clone())
		}
	}
	return result, nil
}

func matchesFilter(loan *domain.Loan, filter domain.ListFilter) bool {
	if filter.EmployeeRef != "" &&
		!strings.Contains(strings.ToLower(loan.EmployeeRef), strings.ToLower(filter.EmployeeRef)) {
		return false
	}
	if filter.Status != "" && loan.Status != strings.ToLower(filter.Status) {
		return false
	}
	if filter.IDContains != "" &&
		!strings.Contains(strings.ToLower(loan.ID.String()), strings.ToLower(filter.IDContains)) {
		return false
	}
	return true
}
