package services

import (
	"context"
	"errors"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// Application service errors
var (
	ErrApplicationNotFound   = errors.New("loan application not found")
	ErrNotApplicationOwner   = errors.New("not the owner of this application")
	ErrApplicationNotPending = errors.New("application is no longer pending")
	ErrInvalidStatus         = errors.New("invalid application status")
)

// ApplicationService handles loan application business logic
type ApplicationService struct {
	appRepo  repositories.ApplicationRepository
	loanRepo repositories.LoanProductRepository
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	loanRepo repositories.LoanProductRepository,
) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		loanRepo: loanRepo,
	}
}

// SubmitInput represents loan application submission input. The applicant
// email always comes from the verified principal, never the request body.
type SubmitInput struct {
	LoanID uint    `json:"loan_id"`
	Amount float64 `json:"amount"`
}

// ListApplicationsOutput represents paginated applications
type ListApplicationsOutput struct {
	Applications []*models.LoanApplication `json:"applications"`
	Total        int64                     `json:"total"`
}

// Submit creates a new loan application with status Pending and fee Unpaid
func (s *ApplicationService) Submit(ctx context.Context, applicantEmail string, input *SubmitInput) (*models.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	app := &models.LoanApplication{
		LoanID:         loan.ID,
		LoanTitle:      loan.Title,
		ApplicantEmail: applicantEmail,
		Amount:         input.Amount,
		Status:         string(domain.StatusPending),
		FeeStatus:      string(domain.FeeUnpaid),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetByID gets an application by ID
func (s *ApplicationService) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListByEmail lists applications submitted by the given applicant
func (s *ApplicationService) ListByEmail(ctx context.Context, email string) ([]*models.LoanApplication, error) {
	return s.appRepo.ListByEmail(ctx, email)
}

// List lists all applications with pagination (staff view)
func (s *ApplicationService) List(ctx context.Context, offset, limit int) (*ListApplicationsOutput, error) {
	apps, total, err := s.appRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListApplicationsOutput{Applications: apps, Total: total}, nil
}

// UpdateStatus updates the review status of an application (staff action).
// The fee status is untouched: review state and fee state are independent.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id uint, status string) (*models.LoanApplication, error) {
	if !domain.ApplicationStatus(status).IsValid() {
		return nil, ErrInvalidStatus
	}

	if err := s.appRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Cancel deletes an application. Only the owner can cancel, and only while
// the application is still pending with an unpaid fee.
func (s *ApplicationService) Cancel(ctx context.Context, id uint, requesterEmail string) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}

	if app.ApplicantEmail != requesterEmail {
		return ErrNotApplicationOwner
	}
	if app.Status != string(domain.StatusPending) || app.FeeStatus != string(domain.FeeUnpaid) {
		return ErrApplicationNotPending
	}

	return s.appRepo.Delete(ctx, id)
}
