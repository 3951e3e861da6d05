package models

import (
	"time"

	"loanlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Name      string         `gorm:"size:100" json:"name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'User'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave rejects unrecognized role values at the store boundary. Update
// statements built from column maps run the hook on a zero-valued receiver,
// so an empty field means the column is not part of this write.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role != "" && !domain.Role(u.Role).IsValid() {
		return domain.ErrInvalidRole
	}
	return nil
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Marketplace Tables
// ============================================================

// LoanProduct represents loan_products table
type LoanProduct struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:150;not null" json:"title"`
	Category     string         `gorm:"size:50;index" json:"category"`
	Description  string         `gorm:"type:text" json:"description"`
	InterestRate float64        `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	MaxLimit     float64        `gorm:"type:decimal(15,2);not null" json:"max_limit"`
	Image        string         `gorm:"size:255" json:"image"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanProduct) TableName() string {
	return "loan_products"
}

// LoanApplication represents loan_applications table
//
// TransactionID is nullable and unique: it is set exactly once, by payment
// reconciliation, and mirrors the ledger entry's key.
type LoanApplication struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	LoanID         uint           `gorm:"not null;index" json:"loan_id"`
	LoanTitle      string         `gorm:"size:150;not null" json:"loan_title"`
	ApplicantEmail string         `gorm:"size:100;not null;index" json:"applicant_email"`
	Amount         float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status         string         `gorm:"size:20;not null;default:'Pending'" json:"status"`
	FeeStatus      string         `gorm:"size:20;not null;default:'Unpaid'" json:"fee_status"`
	TransactionID  *string        `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	PaidAt         *time.Time     `json:"paid_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Loan *LoanProduct `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

// BeforeSave rejects unrecognized status values at the store boundary. Update
// statements built from column maps run the hook on a zero-valued receiver,
// so empty fields mean those columns are not part of this write; skipping
// them keeps MarkFeePaid and UpdateStatus working while full-struct creates
// and saves stay validated.
func (a *LoanApplication) BeforeSave(tx *gorm.DB) error {
	if a.Status != "" && !domain.ApplicationStatus(a.Status).IsValid() {
		return domain.ErrInvalidInput
	}
	if a.FeeStatus != "" && a.FeeStatus != string(domain.FeeUnpaid) && a.FeeStatus != string(domain.FeePaid) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Payment represents payments table (append-only ledger)
//
// ApplicationID is the loan application whose fee this payment settles; it
// comes back from the processor as the session's loanId metadata. The unique
// index on TransactionID is the backstop against two concurrent
// reconciliation calls both inserting a row for the same payment intent.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	Amount        float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	CustomerEmail string    `gorm:"size:100;not null;index" json:"customer_email"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	LoanTitle     string    `gorm:"size:150" json:"loan_title"`
	PaymentStatus string    `gorm:"size:20;not null" json:"payment_status"`
	PaidAt        time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&LoanProduct{},
		&LoanApplication{},
		&Payment{},
	)
}
