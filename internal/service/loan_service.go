package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/hrpulse/loan-engine/internal/config"
	"github.com/hrpulse/loan-engine/internal/domain"
	"github.com/hrpulse/loan-engine/internal/repository"
	customError "github.com/hrpulse/loan-engine/pkg/errors"
)

// LoanService owns the authoritative loan collection. All state
// transitions go through it: an event is applied to a clone of the
// stored record and swapped in only after a successful persist, so a
// storage failure leaves the record unchanged.
type LoanService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	redis       *redis.Client
	config      *config.Config

	// one mutex per loan id, held across the read-apply-persist
	// sequence so at most one transition runs per loan at a time
	eventLocks sync.Map
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	redis *redis.Client,
	config *config.Config,
) *LoanService {
	return &LoanService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		redis:       redis,
		config:      config,
	}
}

// CreateLoan validates and stores a new loan request. The loan starts as
// draft, or as requested when SubmitNow is set.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if request.EmployeeRef == "" {
		return nil, customError.WrapValidation("employee reference is required")
	}
	if !domain.ValidKind(request.Kind) {
		return nil, customError.WrapValidation(fmt.Sprintf("unknown loan kind %q", request.Kind))
	}
	if !request.RequestedAmount.IsPositive() {
		return nil, customError.WrapValidation("requested amount must be greater than zero")
	}
	if request.Reason == "" {
		return nil, customError.WrapValidation("reason is required")
	}
	if request.TenureMonths <= 0 {
		return nil, customError.WrapValidation("tenure months must be greater than zero")
	}
	if s.config != nil && request.TenureMonths > s.config.Business.MaxTenureMonths {
		return nil, customError.WrapValidation(
			fmt.Sprintf("tenure months must not exceed %d", s.config.Business.MaxTenureMonths))
	}

	rate := decimal.Zero
	if request.InterestRate != nil {
		if request.InterestRate.IsNegative() {
			return nil, customError.WrapValidation("interest rate must not be negative")
		}
		rate = *request.InterestRate
	} else if s.config != nil {
		rate = s.config.GetDefaultAnnualRatePercent()
	}

	status := domain.LoanStatusDraft
	if request.SubmitNow {
		status = domain.LoanStatusRequested
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:              uuid.New(),
		EmployeeRef:     request.EmployeeRef,
		Kind:            request.Kind,
		RequestedAmount: request.RequestedAmount,
		InterestRate:    rate,
		TenureMonths:    request.TenureMonths,
		Status:          status,
		Reason:          request.Reason,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapStorageError(err)
	}

	s.cacheSet(ctx, loan)
	return loan, nil
}

// GetLoan retrieves a loan by id.
func (s *LoanService) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	loanID, err := uuid.Parse(id)
	if err != nil {
		return nil, customError.WrapLoanNotFound(id)
	}

	if loan := s.cacheGet(ctx, id); loan != nil {
		return loan, nil
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.readError(id, err)
	}

	s.cacheSet(ctx, loan)
	return loan, nil
}

// ListLoans returns loans matching the filter in insertion order.
func (s *LoanService) ListLoans(ctx context.Context, filter domain.ListFilter) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	return loans, nil
}

// SubmitLoan moves a draft into the approval queue.
func (s *LoanService) SubmitLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		return loan.Submit()
	})
}

// ApproveLoan grants the loan, generates its repayment schedule and sets
// the status to approved or partially approved.
func (s *LoanService) ApproveLoan(ctx context.Context, id string, request *domain.ApproveLoanRequest) (*domain.Loan, error) {
	return s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		return loan.Approve(request.Amount, request.InterestRate, request.TenureMonths, time.Now())
	})
}

// RejectLoan declines a requested loan. Terminal.
func (s *LoanService) RejectLoan(ctx context.Context, id string, reason string) (*domain.Loan, error) {
	return s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		return loan.Reject(reason)
	})
}

// DisburseLoan marks an approved loan as funded.
func (s *LoanService) DisburseLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		return loan.Disburse()
	})
}

// RecordPayment settles one installment and writes a payment audit
// record. The loan closes once nothing remains unpaid.
func (s *LoanService) RecordPayment(ctx context.Context, id string, installmentNumber int) (*domain.Loan, error) {
	var paid *domain.InstallmentRecord

	loan, err := s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		rec, err := loan.RecordPayment(installmentNumber, time.Now())
		if err != nil {
			return err
		}
		paid = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:                uuid.New(),
		LoanID:            loan.ID,
		InstallmentNumber: paid.InstallmentNumber,
		Amount:            paid.Amount,
		PaidAt:            *paid.PaidDate,
	}
	// The installment is already settled; a failed audit write is logged
	// rather than surfaced as a payment failure.
	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		log.Printf("failed to record payment audit for loan %s: %v", loan.ID, err)
	}

	return loan, nil
}

// EditLoan rewrites the requested terms of a loan awaiting a decision.
func (s *LoanService) EditLoan(ctx context.Context, id string, request *domain.EditLoanRequest) (*domain.Loan, error) {
	return s.applyEvent(ctx, id, func(loan *domain.Loan) error {
		return loan.Edit(request.RequestedAmount, request.TenureMonths)
	})
}

// GetSchedule returns the repayment schedule with overdue derived from
// due dates at call time.
func (s *LoanService) GetSchedule(ctx context.Context, id string) ([]*domain.InstallmentRecord, error) {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	schedule := make([]*domain.InstallmentRecord, 0, len(loan.Schedule))
	for _, rec := range loan.Schedule {
		copied := *rec
		copied.Status = rec.EffectiveStatus(now)
		schedule = append(schedule, &copied)
	}
	return schedule, nil
}

// GetOutstanding returns the remaining unpaid balance for a loan.
func (s *LoanService) GetOutstanding(ctx context.Context, id string) (decimal.Decimal, error) {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return loan.RemainingBalance, nil
}

// ListPayments returns the payment audit trail for a loan, oldest first.
func (s *LoanService) ListPayments(ctx context.Context, id string) ([]*domain.Payment, error) {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}
	return payments, nil
}

// ListOverdueLoans summarizes active loans carrying past-due pending
// installments, for the reminder scheduler.
func (s *LoanService) ListOverdueLoans(ctx context.Context) ([]*domain.OverdueLoan, error) {
	loans, err := s.LoanRepo.List(ctx, domain.ListFilter{Status: domain.LoanStatusActive})
	if err != nil {
		return nil, customError.WrapStorageError(err)
	}

	now := time.Now()
	var overdue []*domain.OverdueLoan
	for _, loan := range loans {
		count := 0
		amount := decimal.Zero
		for _, rec := range loan.Schedule {
			if rec.EffectiveStatus(now) == domain.InstallmentStatusOverdue {
				count++
				amount = amount.Add(rec.Amount)
			}
		}
		if count > 0 {
			overdue = append(overdue, &domain.OverdueLoan{
				LoanID:        loan.ID,
				EmployeeRef:   loan.EmployeeRef,
				OverdueCount:  count,
				OverdueAmount: amount,
			})
		}
	}
	return overdue, nil
}

// applyEvent loads the loan, applies the event to a clone and persists
// it. Guard failures and invalid transitions surface before any write;
// a persist failure discards the staged clone. Transitions for the same
// loan id are serialized so concurrent events cannot read the same
// snapshot and overwrite each other; events on different loans proceed
// in parallel.
func (s *LoanService) applyEvent(ctx context.Context, id string, apply func(*domain.Loan) error) (*domain.Loan, error) {
	loanID, err := uuid.Parse(id)
	if err != nil {
		return nil, customError.WrapLoanNotFound(id)
	}

	unlock := s.lockLoan(loanID)
	defer unlock()

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.readError(id, err)
	}

	next := loan.Clone()
	if err := apply(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()

	if err := s.LoanRepo.Update(ctx, next); err != nil {
		return nil, customError.WrapStorageError(err)
	}

	s.cacheSet(ctx, next)
	return next, nil
}

func (s *LoanService) lockLoan(id uuid.UUID) func() {
	v, _ := s.eventLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *LoanService) readError(id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, customError.ErrLoanNotFound) {
		return customError.WrapLoanNotFound(id)
	}
	return customError.WrapStorageError(err)
}

func (s *LoanService) cacheSet(ctx context.Context, loan *domain.Loan) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(loan)
	if err != nil {
		return
	}

	ttl := 24 * time.Hour
	if s.config != nil {
		ttl = s.config.GetCacheTTL()
	}
	s.redis.Set(ctx, cacheKey(loan.ID.String()), data, ttl)
}

func (s *LoanService) cacheGet(ctx context.Context, id string) *domain.Loan {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil
	}

	var loan domain.Loan
	if err := json.Unmarshal(data, &loan); err != nil {
		return nil
	}
	return &loan
}

func cacheKey(id string) string {
	return "loan:" + id
}
