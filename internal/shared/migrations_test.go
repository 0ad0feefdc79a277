package shared

import (
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	// Migrated schema has the downloads table and its sequence seeded.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&count); err != nil {
		t.Errorf("downloads table missing: %v", err)
	}

	var seq int
	if err := db.QueryRow("SELECT value FROM downloads_sequence WHERE id = 1").Scan(&seq); err != nil {
		t.Fatalf("downloads_sequence not seeded: %v", err)
	}
	if seq != 0 {
		t.Errorf("initial sequence = %d, want 0", seq)
	}

	// Running again is a no-op.
	if err := RunMigrations(db); err != nil {
		t.Errorf("second RunMigrations() error = %v", err)
	}
}

func TestRunMigrations_UniqueIndex(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	insert := `INSERT INTO downloads (id, sequence, track_key, artist, title, album, output_path, created_at, updated_at)
		VALUES (?, ?, 'key', 'a', 't', '', '/p', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	if _, err := db.Exec(insert, "id-1", 1); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "id-2", 2); err == nil {
		t.Error("expected UNIQUE violation for duplicate active track_key")
	}

	// Soft-deleting frees the key.
	if _, err := db.Exec("UPDATE downloads SET deleted_at = CURRENT_TIMESTAMP WHERE id = 'id-1'"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(insert, "id-3", 3); err != nil {
		t.Errorf("insert after soft delete failed: %v", err)
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&count); err == nil {
		t.Error("downloads table should be gone after rollback")
	}

	if err := RollbackMigration(db); err == nil {
		t.Error("expected error rolling back with nothing applied")
	}
}
