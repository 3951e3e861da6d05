package repositories

import (
	"context"

	"loanlink-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanProductRepository implements LoanProductRepository interface
type loanProductRepository struct {
	db *gorm.DB
}

// NewLoanProductRepository creates a new loan product repository
func NewLoanProductRepository(db *gorm.DB) LoanProductRepository {
	return &loanProductRepository{db: db}
}

// Create creates a new loan product
func (r *loanProductRepository) Create(ctx context.Context, loan *models.LoanProduct) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan product by ID
func (r *loanProductRepository) GetByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	var loan models.LoanProduct
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loan products with pagination, newest first
func (r *loanProductRepository) List(ctx context.Context, offset, limit int) ([]*models.LoanProduct, int64, error) {
	var loans []*models.LoanProduct
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.LoanProduct{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// Update updates a loan product
func (r *loanProductRepository) Update(ctx context.Context, loan *models.LoanProduct) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// Delete soft deletes a loan product
func (r *loanProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LoanProduct{}, id).Error
}
