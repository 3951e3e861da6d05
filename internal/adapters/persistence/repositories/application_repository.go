package repositories

import (
	"context"
	"time"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new loan application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new loan application
func (r *applicationRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets a loan application by ID
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByEmail lists applications submitted by the given applicant
func (r *applicationRepository) ListByEmail(ctx context.Context, email string) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("applicant_email = ?", email).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// List lists all applications with pagination
func (r *applicationRepository) List(ctx context.Context, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.LoanApplication{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// UpdateStatus updates the review status of an application
func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkFeePaid sets fee_status=Paid, paid_at and transaction_id in one update.
// The transaction_id is written only once: the WHERE clause skips rows that
// already carry one, so replays are no-ops.
func (r *applicationRepository) MarkFeePaid(ctx context.Context, id uint, transactionID string, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ?", id).
		Where("transaction_id IS NULL").
		Updates(map[string]interface{}{
			"fee_status":     string(domain.FeePaid),
			"transaction_id": transactionID,
			"paid_at":        paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the application is gone or the fee was already recorded.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.LoanApplication{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete soft deletes a loan application
func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LoanApplication{}, id).Error
}
