package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanlink-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

func TestPaymentCreateDuplicateTransactionID(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)

	payment := &models.Payment{
		TransactionID: "pi_100",
		Amount:        25,
		CustomerEmail: "alice@example.com",
		ApplicationID: 1,
		PaymentStatus: "paid",
		PaidAt:        time.Now(),
	}
	if err := repo.Create(context.Background(), payment); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dup := &models.Payment{
		TransactionID: "pi_100",
		Amount:        25,
		CustomerEmail: "alice@example.com",
		ApplicationID: 1,
		PaymentStatus: "paid",
		PaidAt:        time.Now(),
	}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey for duplicate transaction id, got %v", err)
	}
}

func TestListUnsyncedFindsOrphanedLedgerEntries(t *testing.T) {
	db := openTestDB(t)
	paymentRepo := NewPaymentRepository(db)
	appRepo := NewApplicationRepository(db)

	app := createPendingApplication(t, db)
	now := time.Now()

	// One payment whose application update landed, one whose didn't.
	synced := &models.Payment{
		TransactionID: "pi_synced",
		CustomerEmail: "alice@example.com",
		ApplicationID: app.ID,
		PaymentStatus: "paid",
		PaidAt:        now,
	}
	orphan := &models.Payment{
		TransactionID: "pi_orphan",
		CustomerEmail: "alice@example.com",
		ApplicationID: app.ID,
		PaymentStatus: "paid",
		PaidAt:        now,
	}
	if err := paymentRepo.Create(context.Background(), synced); err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	if err := paymentRepo.Create(context.Background(), orphan); err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	if err := appRepo.MarkFeePaid(context.Background(), app.ID, "pi_synced", now); err != nil {
		t.Fatalf("MarkFeePaid failed: %v", err)
	}

	unsynced, err := paymentRepo.ListUnsynced(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListUnsynced failed: %v", err)
	}
	if len(unsynced) != 1 || unsynced[0].TransactionID != "pi_orphan" {
		t.Fatalf("expected only the orphaned entry, got %+v", unsynced)
	}
}
