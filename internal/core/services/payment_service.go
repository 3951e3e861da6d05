package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/config"
	"loanlink-api/internal/core/domain"
	"loanlink-api/internal/pkg/checkout"

	"gorm.io/gorm"
)

// Payment service errors
var (
	ErrFeeAlreadyPaid      = errors.New("application fee already paid")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrUpstreamUnavailable = errors.New("payment processor unavailable")
)

// SessionClient is the processor surface the payment service depends on.
// *checkout.Client satisfies it; tests substitute a stub.
type SessionClient interface {
	CreateSession(ctx context.Context, params checkout.CreateSessionParams) (*checkout.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*checkout.Session, error)
}

// PaymentService handles checkout initiation and payment reconciliation
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	appRepo     repositories.ApplicationRepository
	client      SessionClient
	cfg         *config.Config
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	appRepo repositories.ApplicationRepository,
	client SessionClient,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		appRepo:     appRepo,
		client:      client,
		cfg:         cfg,
	}
}

// CheckoutOutput carries the redirect target for a hosted checkout session
type CheckoutOutput struct {
	URL string `json:"url"`
}

// ConfirmResult is the outcome of one reconciliation pass. Success is the
// only field callers may use to decide whether the fee is settled.
type ConfirmResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	LoanID        uint   `json:"loanId,omitempty"`
}

// CreateCheckoutSession opens a hosted checkout session for an application's
// processing fee. The fee amount comes from configuration, never the client.
// Re-invocation may create multiple sessions; that is fine, the reconciler
// collapses them because the payment intent is the idempotency key.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, applicationID uint, principalEmail string) (*CheckoutOutput, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.ApplicantEmail != principalEmail {
		return nil, ErrNotApplicationOwner
	}
	if app.FeeStatus == string(domain.FeePaid) {
		return nil, ErrFeeAlreadyPaid
	}

	session, err := s.client.CreateSession(ctx, checkout.CreateSessionParams{
		LoanID:        app.ID,
		LoanName:      app.LoanTitle,
		CustomerEmail: principalEmail,
		AmountCents:   s.cfg.Checkout.FeeCents,
		Currency:      s.cfg.Checkout.Currency,
		SuccessURL:    s.cfg.Checkout.SuccessURL,
		CancelURL:     s.cfg.Checkout.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	log.Printf("💳 Checkout session opened: app=%d session=%s", app.ID, session.ID)

	return &CheckoutOutput{URL: session.URL}, nil
}

// ConfirmPayment reconciles one checkout session into the ledger.
//
// The session reference from the redirect is untrusted; the processor's view
// of the session is the only payment truth. The payment intent id, not the
// session id, is the idempotency key: refreshing the return page or a
// duplicate callback re-enters here with the same intent and must not
// double-write. Order matters in the success path: the ledger insert comes
// first because it is the gate every replay checks; the application update
// follows, and if it fails the nightly sweep re-applies it.
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidInput
	}

	// 1. Retrieve authoritative session state from the processor
	session, err := s.client.RetrieveSession(ctx, sessionID)
	if err != nil {
		var apiErr *checkout.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	// 2. The payment intent is the canonical payment identifier
	transactionID := session.PaymentIntentID
	loanID := parseLoanID(session.Metadata)

	// 3. Idempotency boundary: a prior ledger entry means nothing to do
	if transactionID != "" {
		existing, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
		if err == nil {
			return &ConfirmResult{
				Success:       true,
				Message:       "already Exists",
				TransactionID: existing.TransactionID,
				LoanID:        existing.ApplicationID,
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// 4. Only a session the processor reports as paid triggers writes
	if session.PaymentStatus != checkout.PaymentStatusPaid {
		return &ConfirmResult{
			Success: false,
			Message: "Payment not completed",
		}, nil
	}
	if transactionID == "" {
		return nil, fmt.Errorf("paid session %s carries no payment intent", sessionID)
	}

	now := time.Now()
	payment := &models.Payment{
		TransactionID: transactionID,
		Amount:        float64(session.AmountTotal) / 100,
		CustomerEmail: session.CustomerEmail,
		ApplicationID: loanID,
		LoanTitle:     session.Metadata["loanName"],
		PaymentStatus: session.PaymentStatus,
		PaidAt:        now,
	}

	// Ledger insert first: the unique index on transaction_id makes the
	// store the arbiter of concurrent confirmations. Losing that race is
	// not an error, it means someone else already recorded this payment.
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ConfirmResult{
				Success:       true,
				Message:       "already Exists",
				TransactionID: transactionID,
				LoanID:        loanID,
			}, nil
		}
		return nil, err
	}

	// Application update second. A failure here leaves the ledger entry in
	// place, so a replay still resolves to "already Exists"; the sweep
	// repairs the application row later.
	if err := s.appRepo.MarkFeePaid(ctx, loanID, transactionID, now); err != nil {
		log.Printf("⚠️ Payment %s recorded but application %d update failed: %v (sweep will retry)", transactionID, loanID, err)
	}

	log.Printf("✅ Payment recorded: tx=%s app=%d amount=%.2f", transactionID, loanID, payment.Amount)

	return &ConfirmResult{
		Success:       true,
		Message:       "Payment recorded",
		TransactionID: transactionID,
		LoanID:        loanID,
	}, nil
}

// ListByEmail lists payments made by the given customer
func (s *PaymentService) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	return s.paymentRepo.ListByEmail(ctx, email)
}

// List lists all payments with pagination (staff view)
func (s *PaymentService) List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, offset, limit)
}

func parseLoanID(metadata map[string]string) uint {
	id, err := strconv.ParseUint(metadata["loanId"], 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
