package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/core/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory database with the same gorm.Config the
// server uses, TranslateError included, so the hooks and error translation
// behave as they do against the real store.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// One connection keeps every statement on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createPendingApplication(t *testing.T, db *gorm.DB) *models.LoanApplication {
	t.Helper()
	app := &models.LoanApplication{
		LoanID:         1,
		LoanTitle:      "Home Starter",
		ApplicantEmail: "alice@example.com",
		Amount:         50000,
		Status:         string(domain.StatusPending),
		FeeStatus:      string(domain.FeeUnpaid),
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}

func TestMarkFeePaidPersistsAgainstStore(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	app := createPendingApplication(t, db)

	paidAt := time.Now().Truncate(time.Second)
	if err := repo.MarkFeePaid(context.Background(), app.ID, "pi_100", paidAt); err != nil {
		t.Fatalf("MarkFeePaid failed: %v", err)
	}

	got, err := repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if got.FeeStatus != string(domain.FeePaid) {
		t.Errorf("expected fee status Paid, got %s", got.FeeStatus)
	}
	if got.TransactionID == nil || *got.TransactionID != "pi_100" {
		t.Errorf("expected transaction id pi_100, got %v", got.TransactionID)
	}
	if got.PaidAt == nil {
		t.Error("expected paid_at to be set")
	}
	if got.Status != string(domain.StatusPending) {
		t.Errorf("fee payment must not touch review status, got %s", got.Status)
	}
}

func TestMarkFeePaidReplayIsNoOp(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	app := createPendingApplication(t, db)

	now := time.Now()
	if err := repo.MarkFeePaid(context.Background(), app.ID, "pi_100", now); err != nil {
		t.Fatalf("first MarkFeePaid failed: %v", err)
	}
	if err := repo.MarkFeePaid(context.Background(), app.ID, "pi_other", now); err != nil {
		t.Fatalf("replay must be a no-op, got %v", err)
	}

	got, err := repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if got.TransactionID == nil || *got.TransactionID != "pi_100" {
		t.Errorf("transaction id is written once, got %v", got.TransactionID)
	}
}

func TestMarkFeePaidMissingApplication(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)

	err := repo.MarkFeePaid(context.Background(), 999, "pi_100", time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateStatusPersistsAgainstStore(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	app := createPendingApplication(t, db)

	if err := repo.UpdateStatus(context.Background(), app.ID, string(domain.StatusApproved)); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := repo.GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if got.Status != string(domain.StatusApproved) {
		t.Errorf("expected status Approved, got %s", got.Status)
	}
	if got.FeeStatus != string(domain.FeeUnpaid) {
		t.Errorf("review must not touch fee status, got %s", got.FeeStatus)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)

	app := &models.LoanApplication{
		LoanID:         1,
		LoanTitle:      "Home Starter",
		ApplicantEmail: "alice@example.com",
		Amount:         1000,
		Status:         "Completed",
		FeeStatus:      string(domain.FeeUnpaid),
	}
	if err := repo.Create(context.Background(), app); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}
