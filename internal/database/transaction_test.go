package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func migratedDB(t *testing.T) Database {
	t.Helper()
	db, _ := openFileDB(t)
	if err := db.GORM().AutoMigrate(&itemModel{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	if err := db.Session(context.Background()).Model(&itemModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestTransaction_CommitPersists(t *testing.T) {
	ctx := context.Background()
	db := migratedDB(t)

	txn, err := NewTransaction(ctx, db)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := txn.Session().Create(&itemModel{Name: "one"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Errorf("Rollback after Commit should be a no-op, got %v", err)
	}

	if got := countItems(t, db); got != 1 {
		t.Errorf("expected 1 row, got %d", got)
	}
}

func TestTransaction_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	db := migratedDB(t)

	txn, err := NewTransaction(ctx, db)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := txn.Session().Create(&itemModel{Name: "one"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if got := countItems(t, db); got != 0 {
		t.Errorf("expected 0 rows, got %d", got)
	}
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := migratedDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&itemModel{Name: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	failure := errors.New("test error")
	err = WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&itemModel{Name: "discarded"}).Error; err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected test error, got %v", err)
	}

	if got := countItems(t, db); got != 1 {
		t.Errorf("expected 1 row after rollback, got %d", got)
	}
}
