package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/config"
	"loanlink-api/internal/core/domain"
	"loanlink-api/internal/pkg/checkout"

	"gorm.io/gorm"
)

// ---- stubs ----

type stubPaymentRepo struct {
	repositories.PaymentRepository
	getByTransactionIDFn func(ctx context.Context, transactionID string) (*models.Payment, error)
	createFn             func(ctx context.Context, payment *models.Payment) error
	listUnsyncedFn       func(ctx context.Context, limit int) ([]*models.Payment, error)

	created []*models.Payment
}

func (s *stubPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	if s.getByTransactionIDFn != nil {
		return s.getByTransactionIDFn(ctx, transactionID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if s.createFn != nil {
		if err := s.createFn(ctx, payment); err != nil {
			return err
		}
	}
	s.created = append(s.created, payment)
	return nil
}

func (s *stubPaymentRepo) ListUnsynced(ctx context.Context, limit int) ([]*models.Payment, error) {
	if s.listUnsyncedFn != nil {
		return s.listUnsyncedFn(ctx, limit)
	}
	return nil, nil
}

type stubApplicationRepo struct {
	repositories.ApplicationRepository
	getByIDFn     func(ctx context.Context, id uint) (*models.LoanApplication, error)
	markFeePaidFn func(ctx context.Context, id uint, transactionID string, paidAt time.Time) error

	feePaidCalls []uint
}

func (s *stubApplicationRepo) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubApplicationRepo) MarkFeePaid(ctx context.Context, id uint, transactionID string, paidAt time.Time) error {
	s.feePaidCalls = append(s.feePaidCalls, id)
	if s.markFeePaidFn != nil {
		return s.markFeePaidFn(ctx, id, transactionID, paidAt)
	}
	return nil
}

type stubSessionClient struct {
	createSessionFn   func(ctx context.Context, params checkout.CreateSessionParams) (*checkout.Session, error)
	retrieveSessionFn func(ctx context.Context, sessionID string) (*checkout.Session, error)
}

func (s *stubSessionClient) CreateSession(ctx context.Context, params checkout.CreateSessionParams) (*checkout.Session, error) {
	return s.createSessionFn(ctx, params)
}

func (s *stubSessionClient) RetrieveSession(ctx context.Context, sessionID string) (*checkout.Session, error) {
	return s.retrieveSessionFn(ctx, sessionID)
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{
			FeeCents:   2500,
			Currency:   "usd",
			SuccessURL: "https://app.example.com/payment-success",
			CancelURL:  "https://app.example.com/payment-cancelled",
		},
	}
}

func paidSession(intentID string, appID string) *checkout.Session {
	return &checkout.Session{
		ID:              "cs_test_1",
		PaymentIntentID: intentID,
		PaymentStatus:   checkout.PaymentStatusPaid,
		CustomerEmail:   "alice@example.com",
		AmountTotal:     2500,
		Metadata:        map[string]string{"loanId": appID, "loanName": "Home Starter"},
	}
}

// ---- ConfirmPayment ----

func TestConfirmPaymentRecordsLedgerAndApplication(t *testing.T) {
	paymentRepo := &stubPaymentRepo{}
	appRepo := &stubApplicationRepo{}
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return paidSession("pi_100", "42"), nil
		},
	}

	svc := NewPaymentService(paymentRepo, appRepo, client, testConfig())

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.TransactionID != "pi_100" {
		t.Errorf("expected transaction id pi_100, got %s", result.TransactionID)
	}
	if result.LoanID != 42 {
		t.Errorf("expected loan id 42, got %d", result.LoanID)
	}

	if len(paymentRepo.created) != 1 {
		t.Fatalf("expected 1 ledger insert, got %d", len(paymentRepo.created))
	}
	p := paymentRepo.created[0]
	if p.TransactionID != "pi_100" || p.ApplicationID != 42 || p.Amount != 25.00 {
		t.Errorf("unexpected ledger row: %+v", p)
	}
	if len(appRepo.feePaidCalls) != 1 || appRepo.feePaidCalls[0] != 42 {
		t.Errorf("expected MarkFeePaid(42), got %v", appRepo.feePaidCalls)
	}
}

func TestConfirmPaymentReplayShortCircuits(t *testing.T) {
	paymentRepo := &stubPaymentRepo{
		getByTransactionIDFn: func(ctx context.Context, transactionID string) (*models.Payment, error) {
			return &models.Payment{TransactionID: transactionID, ApplicationID: 42}, nil
		},
	}
	appRepo := &stubApplicationRepo{}
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return paidSession("pi_100", "42"), nil
		},
	}

	svc := NewPaymentService(paymentRepo, appRepo, client, testConfig())

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("replay must still report success, got %+v", result)
	}
	if result.Message != "already Exists" {
		t.Errorf("expected message 'already Exists', got %q", result.Message)
	}
	if len(paymentRepo.created) != 0 {
		t.Errorf("replay must not insert, got %d inserts", len(paymentRepo.created))
	}
	if len(appRepo.feePaidCalls) != 0 {
		t.Errorf("replay must not touch the application, got %v", appRepo.feePaidCalls)
	}
}

func TestConfirmPaymentUnpaidSessionWritesNothing(t *testing.T) {
	paymentRepo := &stubPaymentRepo{}
	appRepo := &stubApplicationRepo{}
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			s := paidSession("pi_100", "42")
			s.PaymentStatus = "unpaid"
			return s, nil
		},
	}

	svc := NewPaymentService(paymentRepo, appRepo, client, testConfig())

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if result.Success {
		t.Fatalf("unpaid session must not report success: %+v", result)
	}
	if len(paymentRepo.created) != 0 || len(appRepo.feePaidCalls) != 0 {
		t.Errorf("unpaid session must write nothing, got %d inserts, %v fee calls",
			len(paymentRepo.created), appRepo.feePaidCalls)
	}
}

func TestConfirmPaymentLostInsertRaceReportsAlreadyExists(t *testing.T) {
	paymentRepo := &stubPaymentRepo{
		createFn: func(ctx context.Context, payment *models.Payment) error {
			return gorm.ErrDuplicatedKey
		},
	}
	appRepo := &stubApplicationRepo{}
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return paidSession("pi_100", "42"), nil
		},
	}

	svc := NewPaymentService(paymentRepo, appRepo, client, testConfig())

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if !result.Success || result.Message != "already Exists" {
		t.Errorf("losing the insert race must resolve as already recorded, got %+v", result)
	}
	if len(appRepo.feePaidCalls) != 0 {
		t.Errorf("loser of the race must not update the application, got %v", appRepo.feePaidCalls)
	}
}

func TestConfirmPaymentUpstreamFailure(t *testing.T) {
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := NewPaymentService(&stubPaymentRepo{}, &stubApplicationRepo{}, client, testConfig())

	_, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestConfirmPaymentUnknownSession(t *testing.T) {
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return nil, &checkout.APIError{StatusCode: 404, Message: "No such checkout session"}
		},
	}

	svc := NewPaymentService(&stubPaymentRepo{}, &stubApplicationRepo{}, client, testConfig())

	_, err := svc.ConfirmPayment(context.Background(), "cs_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestConfirmPaymentApplicationUpdateFailureStillSucceeds(t *testing.T) {
	paymentRepo := &stubPaymentRepo{}
	appRepo := &stubApplicationRepo{
		markFeePaidFn: func(ctx context.Context, id uint, transactionID string, paidAt time.Time) error {
			return errors.New("deadlock")
		},
	}
	client := &stubSessionClient{
		retrieveSessionFn: func(ctx context.Context, sessionID string) (*checkout.Session, error) {
			return paidSession("pi_100", "42"), nil
		},
	}

	svc := NewPaymentService(paymentRepo, appRepo, client, testConfig())

	result, err := svc.ConfirmPayment(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	// The ledger entry landed; the sweep owns the application repair.
	if !result.Success {
		t.Fatalf("ledger insert succeeded, result must be success: %+v", result)
	}
	if len(paymentRepo.created) != 1 {
		t.Errorf("expected the ledger insert to stand, got %d", len(paymentRepo.created))
	}
}

func TestConfirmPaymentEmptySessionID(t *testing.T) {
	svc := NewPaymentService(&stubPaymentRepo{}, &stubApplicationRepo{}, &stubSessionClient{}, testConfig())

	_, err := svc.ConfirmPayment(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// ---- CreateCheckoutSession ----

func TestCreateCheckoutSession(t *testing.T) {
	appRepo := &stubApplicationRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.LoanApplication, error) {
			return &models.LoanApplication{
				ID:             42,
				LoanTitle:      "Home Starter",
				ApplicantEmail: "alice@example.com",
				FeeStatus:      string(domain.FeeUnpaid),
			}, nil
		},
	}

	var gotParams checkout.CreateSessionParams
	client := &stubSessionClient{
		createSessionFn: func(ctx context.Context, params checkout.CreateSessionParams) (*checkout.Session, error) {
			gotParams = params
			return &checkout.Session{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
		},
	}

	svc := NewPaymentService(&stubPaymentRepo{}, appRepo, client, testConfig())

	out, err := svc.CreateCheckoutSession(context.Background(), 42, "alice@example.com")
	if err != nil {
		t.Fatalf("CreateCheckoutSession failed: %v", err)
	}
	if out.URL != "https://pay.example.com/cs_test_1" {
		t.Errorf("unexpected redirect url %s", out.URL)
	}
	if gotParams.AmountCents != 2500 {
		t.Errorf("fee amount must come from configuration, got %d", gotParams.AmountCents)
	}
	if gotParams.LoanID != 42 || gotParams.LoanName != "Home Starter" {
		t.Errorf("unexpected session params: %+v", gotParams)
	}
}

func TestCreateCheckoutSessionOwnershipAndState(t *testing.T) {
	tests := []struct {
		name      string
		app       *models.LoanApplication
		appErr    error
		principal string
		wantErr   error
	}{
		{
			name:      "not found",
			appErr:    gorm.ErrRecordNotFound,
			principal: "alice@example.com",
			wantErr:   ErrApplicationNotFound,
		},
		{
			name: "not the applicant",
			app: &models.LoanApplication{
				ID: 42, ApplicantEmail: "alice@example.com", FeeStatus: string(domain.FeeUnpaid),
			},
			principal: "mallory@example.com",
			wantErr:   ErrNotApplicationOwner,
		},
		{
			name: "fee already paid",
			app: &models.LoanApplication{
				ID: 42, ApplicantEmail: "alice@example.com", FeeStatus: string(domain.FeePaid),
			},
			principal: "alice@example.com",
			wantErr:   ErrFeeAlreadyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &stubApplicationRepo{
				getByIDFn: func(ctx context.Context, id uint) (*models.LoanApplication, error) {
					return tt.app, tt.appErr
				},
			}
			svc := NewPaymentService(&stubPaymentRepo{}, appRepo, &stubSessionClient{}, testConfig())

			_, err := svc.CreateCheckoutSession(context.Background(), 42, tt.principal)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
