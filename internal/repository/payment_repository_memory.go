package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hrpulse/loan-engine/internal/domain"
)

// MemoryPaymentRepository is an in-memory PaymentRepository.
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID][]*domain.Payment
}

// NewMemoryPaymentRepository creates an empty in-memory payment repository.
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		payments: make(map[uuid.UUID][]*domain.Payment),
	}
}

func (r *MemoryPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *payment
	r.payments[payment.LoanID] = append(r.payments[payment.LoanID], &copied)
	return nil
}

func (r *MemoryPaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.payments[loanID]
	result := make([]*domain.Payment, 0, len(stored))
	for _, p := range stored {
		copied := *p
		result = append(result, &copied)
	}
	return result, nil
}
