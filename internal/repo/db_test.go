package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
)

func TestOpenSQLite_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// The migrated schema must enforce the composite alert key.
	pid := seedProduct(t, db, "milk")
	if _, err := UpsertAlert(context.Background(), db, pid, domain.KindExpired, day(2025, 6, 1), "m"); err != nil {
		t.Fatalf("upsert on migrated schema: %v", err)
	}
	created, err := UpsertAlert(context.Background(), db, pid, domain.KindExpired, day(2025, 6, 1), "m")
	if err != nil || created {
		t.Fatalf("duplicate key must refresh, not create: created=%v err=%v", created, err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "missing", "app.db")); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
