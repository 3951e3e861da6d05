package services

import (
	"context"
	"errors"
	"log"
	"time"

	"loanlink-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const sweepBatchSize = 100

// ReconcileService runs the background maintenance jobs: it repairs
// applications whose fee payment made it into the ledger but whose
// application row was never updated (that gap opens when the reconciliation
// endpoint inserts the payment and then fails before the application write
// lands), and it prunes long-expired refresh tokens.
type ReconcileService struct {
	cron        *cron.Cron
	paymentRepo repositories.PaymentRepository
	appRepo     repositories.ApplicationRepository
	tokenRepo   repositories.RefreshTokenRepository
}

// NewReconcileService creates the background job service
func NewReconcileService(paymentRepo repositories.PaymentRepository, appRepo repositories.ApplicationRepository, tokenRepo repositories.RefreshTokenRepository) *ReconcileService {
	return &ReconcileService{
		cron:        cron.New(),
		paymentRepo: paymentRepo,
		appRepo:     appRepo,
		tokenRepo:   tokenRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *ReconcileService) Start() {
	// Every 10 minutes
	_, err := s.cron.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			log.Printf("❌ Payment sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ Failed to schedule payment sweep: %v", err)
		return
	}

	// Daily at 03:00
	_, err = s.cron.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.CleanupExpiredTokens(ctx); err != nil {
			log.Printf("❌ Refresh token cleanup failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ Failed to schedule refresh token cleanup: %v", err)
		return
	}

	s.cron.Start()
	log.Println("✅ Payment reconciliation sweep scheduled (every 10 minutes)")
	log.Println("✅ Refresh token cleanup scheduled (daily at 03:00)")
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *ReconcileService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Payment reconciliation sweep stopped")
}

// Sweep finds ledger entries with no matching application transaction and
// re-applies the application update for each.
func (s *ReconcileService) Sweep(ctx context.Context) error {
	payments, err := s.paymentRepo.ListUnsynced(ctx, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}

	repaired := 0
	for _, p := range payments {
		err := s.appRepo.MarkFeePaid(ctx, p.ApplicationID, p.TransactionID, p.PaidAt)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Application deleted after payment; nothing to repair.
				continue
			}
			log.Printf("⚠️ Sweep could not update application %d for tx %s: %v", p.ApplicationID, p.TransactionID, err)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		log.Printf("✅ Payment sweep repaired %d application(s)", repaired)
	}
	return nil
}

// CleanupExpiredTokens removes refresh tokens past their retention window so
// the table does not grow without bound.
func (s *ReconcileService) CleanupExpiredTokens(ctx context.Context) error {
	return s.tokenRepo.DeleteExpired(ctx)
}
