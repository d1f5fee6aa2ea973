package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/hrpulse/loan-engine/internal/config"
	"github.com/hrpulse/loan-engine/internal/repository"
	"github.com/hrpulse/loan-engine/internal/service"
)

func main() {
	log.Println("Starting loan reminder scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	loanService := service.NewLoanService(loanRepo, paymentRepo, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily job reporting loans with past-due installments. Overdue is
	// derived from due dates at query time, never written back; actual
	// notification delivery is owned by an external sender.
	_, err = c.AddFunc(cfg.Scheduler.ReminderCron, func() {
		runOverdueReminders(loanService)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue reminder job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func runOverdueReminders(loanService *service.LoanService) {
	log.Println("Running overdue reminder job...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	overdue, err := loanService.ListOverdueLoans(ctx)
	if err != nil {
		log.Printf("Overdue reminder job failed: %v", err)
		return
	}

	for _, loan := range overdue {
		log.Printf("Reminder: loan %s (employee %s) has %d overdue installment(s) totaling %s",
			loan.LoanID, loan.EmployeeRef, loan.OverdueCount, loan.OverdueAmount)
	}

	log.Printf("Overdue reminder job finished, %d loan(s) flagged", len(overdue))
}
