package services

import (
	"context"
	"errors"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Loan service errors
var (
	ErrLoanNotFound = errors.New("loan not found")
)

// LoanService handles loan product catalogue logic
type LoanService struct {
	loanRepo repositories.LoanProductRepository
}

// NewLoanService creates a new loan service
func NewLoanService(loanRepo repositories.LoanProductRepository) *LoanService {
	return &LoanService{loanRepo: loanRepo}
}

// CreateLoanInput represents loan product creation input
type CreateLoanInput struct {
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	InterestRate float64 `json:"interest_rate"`
	MaxLimit     float64 `json:"max_limit"`
	Image        string  `json:"image"`
}

// UpdateLoanInput represents loan product update input
type UpdateLoanInput struct {
	Title        *string  `json:"title"`
	Category     *string  `json:"category"`
	Description  *string  `json:"description"`
	InterestRate *float64 `json:"interest_rate"`
	MaxLimit     *float64 `json:"max_limit"`
	Image        *string  `json:"image"`
}

// ListLoansOutput represents paginated loan products
type ListLoansOutput struct {
	Loans []*models.LoanProduct `json:"loans"`
	Total int64                 `json:"total"`
}

// Create creates a new loan product
func (s *LoanService) Create(ctx context.Context, input *CreateLoanInput) (*models.LoanProduct, error) {
	loan := &models.LoanProduct{
		Title:        input.Title,
		Category:     input.Category,
		Description:  input.Description,
		InterestRate: input.InterestRate,
		MaxLimit:     input.MaxLimit,
		Image:        input.Image,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetByID gets a loan product by ID
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// List lists loan products, newest first
func (s *LoanService) List(ctx context.Context, offset, limit int) (*ListLoansOutput, error) {
	loans, total, err := s.loanRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &ListLoansOutput{Loans: loans, Total: total}, nil
}

// Update updates a loan product
func (s *LoanService) Update(ctx context.Context, id uint, input *UpdateLoanInput) (*models.LoanProduct, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		loan.Title = *input.Title
	}
	if input.Category != nil {
		loan.Category = *input.Category
	}
	if input.Description != nil {
		loan.Description = *input.Description
	}
	if input.InterestRate != nil {
		loan.InterestRate = *input.InterestRate
	}
	if input.MaxLimit != nil {
		loan.MaxLimit = *input.MaxLimit
	}
	if input.Image != nil {
		loan.Image = *input.Image
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Delete soft deletes a loan product
func (s *LoanService) Delete(ctx context.Context, id uint) error {
	if _, err := s.loanRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoanNotFound
		}
		return err
	}
	return s.loanRepo.Delete(ctx, id)
}
