package services

import (
	"context"
	"log"
	"time"

	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/pkg/clock"

	"github.com/robfig/cron/v3"
)

// DeadlineScheduler runs the background sweeps that move time-driven state:
// overdue payments and finished engagements. Each row is handled in its own
// transaction so one bad record never blocks the rest of the sweep.
type DeadlineScheduler struct {
	payments  repositories.PaymentStore
	contracts repositories.ContractStore
	payment   *PaymentService
	contract  *ContractService
	clk       clock.Clock

	interval time.Duration
	cron     *cron.Cron
	stopChan chan struct{}
}

// NewDeadlineScheduler creates a new deadline scheduler
func NewDeadlineScheduler(
	payments repositories.PaymentStore,
	contracts repositories.ContractStore,
	paymentService *PaymentService,
	contractService *ContractService,
	clk clock.Clock,
	interval time.Duration,
) *DeadlineScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DeadlineScheduler{
		payments:  payments,
		contracts: contracts,
		payment:   paymentService,
		contract:  contractService,
		clk:       clk,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the expiry loop and the daily completion job
func (s *DeadlineScheduler) Start() {
	log.Println("🚀 DeadlineScheduler started")

	go s.runExpiryLoop()

	// Completion runs once a day, shortly after midnight, since end dates
	// have day granularity.
	s.cron = cron.New()
	s.cron.AddFunc("5 0 * * *", func() {
		s.RunCompletionSweep(context.Background())
	})
	s.cron.Start()
}

// Stop gracefully stops the scheduler
func (s *DeadlineScheduler) Stop() {
	close(s.stopChan)
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("🛑 DeadlineScheduler stopped")
}

func (s *DeadlineScheduler) runExpiryLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunExpirySweep(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// RunExpirySweep marks every payment whose deadline has elapsed as overdue,
// expiring its contract and imposing the penalty. Returns the number of
// payments actually expired.
func (s *DeadlineScheduler) RunExpirySweep(ctx context.Context) int {
	now := s.clk.Now()

	payments, err := s.payments.ListDeadlineElapsed(ctx, now)
	if err != nil {
		log.Printf("❌ Expiry sweep query error: %v", err)
		return 0
	}

	expired := 0
	for _, payment := range payments {
		ok, err := s.payment.Expire(ctx, payment.ID)
		if err != nil {
			log.Printf("❌ Expiry sweep: payment #%d: %v", payment.ID, err)
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		log.Printf("⚠️ Expiry sweep: %d payment(s) overdue", expired)
	}
	return expired
}

// RunCompletionSweep completes every active contract whose engagement has
// ended. Returns the number of contracts completed.
func (s *DeadlineScheduler) RunCompletionSweep(ctx context.Context) int {
	now := s.clk.Now()

	contracts, err := s.contracts.ListActiveEndedBefore(ctx, now)
	if err != nil {
		log.Printf("❌ Completion sweep query error: %v", err)
		return 0
	}

	completed := 0
	for _, contract := range contracts {
		if _, err := s.contract.Complete(ctx, contract.ID); err != nil {
			log.Printf("❌ Completion sweep: contract #%d: %v", contract.ID, err)
			continue
		}
		completed++
	}

	if completed > 0 {
		log.Printf("✅ Completion sweep: %d contract(s) completed", completed)
	}
	return completed
}
