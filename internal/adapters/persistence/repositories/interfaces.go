package repositories

import (
	"context"
	"time"

	"loanlink-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// LoanProductRepository defines loan product repository interface
type LoanProductRepository interface {
	Create(ctx context.Context, loan *models.LoanProduct) error
	GetByID(ctx context.Context, id uint) (*models.LoanProduct, error)
	List(ctx context.Context, offset, limit int) ([]*models.LoanProduct, int64, error)
	Update(ctx context.Context, loan *models.LoanProduct) error
	Delete(ctx context.Context, id uint) error
}

// ApplicationRepository defines loan application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.LoanApplication) error
	GetByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	ListByEmail(ctx context.Context, email string) ([]*models.LoanApplication, error)
	List(ctx context.Context, offset, limit int) ([]*models.LoanApplication, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	MarkFeePaid(ctx context.Context, id uint, transactionID string, paidAt time.Time) error
	Delete(ctx context.Context, id uint) error
}

// PaymentRepository defines payment ledger repository interface.
// The ledger is append-only: rows are inserted once and never updated.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
	List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error)
	ListUnsynced(ctx context.Context, limit int) ([]*models.Payment, error)
}
