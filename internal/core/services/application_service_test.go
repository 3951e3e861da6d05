package services

import (
	"context"
	"errors"
	"testing"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/core/domain"

	"gorm.io/gorm"
)

type appRepoStub struct {
	repositories.ApplicationRepository
	getByIDFn func(ctx context.Context, id uint) (*models.LoanApplication, error)

	created []*models.LoanApplication
	deleted []uint
	updated map[uint]string
}

func (s *appRepoStub) Create(ctx context.Context, app *models.LoanApplication) error {
	s.created = append(s.created, app)
	return nil
}

func (s *appRepoStub) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *appRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	if s.updated == nil {
		s.updated = map[uint]string{}
	}
	s.updated[id] = status
	return nil
}

func (s *appRepoStub) Delete(ctx context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type loanRepoStub struct {
	repositories.LoanProductRepository
	getByIDFn func(ctx context.Context, id uint) (*models.LoanProduct, error)
}

func (s *loanRepoStub) GetByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	return s.getByIDFn(ctx, id)
}

func TestSubmitSnapshotsLoanAndStartsPendingUnpaid(t *testing.T) {
	loanRepo := &loanRepoStub{
		getByIDFn: func(ctx context.Context, id uint) (*models.LoanProduct, error) {
			return &models.LoanProduct{ID: 7, Title: "Home Starter"}, nil
		},
	}
	appRepo := &appRepoStub{}
	svc := NewApplicationService(appRepo, loanRepo)

	app, err := svc.Submit(context.Background(), "alice@example.com", &SubmitInput{LoanID: 7, Amount: 50000})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if app.Status != string(domain.StatusPending) {
		t.Errorf("new application must start Pending, got %s", app.Status)
	}
	if app.FeeStatus != string(domain.FeeUnpaid) {
		t.Errorf("new application must start with fee Unpaid, got %s", app.FeeStatus)
	}
	if app.LoanTitle != "Home Starter" {
		t.Errorf("expected loan title snapshot, got %s", app.LoanTitle)
	}
	if app.ApplicantEmail != "alice@example.com" {
		t.Errorf("applicant must be the principal, got %s", app.ApplicantEmail)
	}
}

func TestSubmitUnknownLoan(t *testing.T) {
	loanRepo := &loanRepoStub{
		getByIDFn: func(ctx context.Context, id uint) (*models.LoanProduct, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewApplicationService(&appRepoStub{}, loanRepo)

	_, err := svc.Submit(context.Background(), "alice@example.com", &SubmitInput{LoanID: 99, Amount: 1000})
	if !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewApplicationService(&appRepoStub{}, &loanRepoStub{})

	_, err := svc.UpdateStatus(context.Background(), 1, "Completed")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	pending := &models.LoanApplication{
		ID:             1,
		ApplicantEmail: "alice@example.com",
		Status:         string(domain.StatusPending),
		FeeStatus:      string(domain.FeeUnpaid),
	}
	approved := &models.LoanApplication{
		ID:             2,
		ApplicantEmail: "alice@example.com",
		Status:         string(domain.StatusApproved),
		FeeStatus:      string(domain.FeeUnpaid),
	}
	paid := &models.LoanApplication{
		ID:             3,
		ApplicantEmail: "alice@example.com",
		Status:         string(domain.StatusPending),
		FeeStatus:      string(domain.FeePaid),
	}

	tests := []struct {
		name       string
		app        *models.LoanApplication
		requester  string
		wantErr    error
		wantDelete bool
	}{
		{"owner cancels pending", pending, "alice@example.com", nil, true},
		{"not the owner", pending, "bob@example.com", ErrNotApplicationOwner, false},
		{"already approved", approved, "alice@example.com", ErrApplicationNotPending, false},
		{"fee already paid", paid, "alice@example.com", ErrApplicationNotPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &appRepoStub{
				getByIDFn: func(ctx context.Context, id uint) (*models.LoanApplication, error) {
					return tt.app, nil
				},
			}
			svc := NewApplicationService(appRepo, &loanRepoStub{})

			err := svc.Cancel(context.Background(), tt.app.ID, tt.requester)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantDelete != (len(appRepo.deleted) == 1) {
				t.Errorf("delete calls: %v", appRepo.deleted)
			}
		})
	}
}
