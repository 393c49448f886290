package database

import (
	"context"
	"embed"
	"os"
	"path/filepath"
	"testing"
	"time"
)

//go:embed testdata
var testMigrationsFS embed.FS

// useTestMigrations points the loader at testdata for the duration of a test.
func useTestMigrations(t *testing.T) {
	t.Helper()
	prevFS, prevDir := MigrationsFS, MigrationsDir
	MigrationsFS, MigrationsDir = testMigrationsFS, "testdata"
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = prevFS, prevDir
	})
}

// openTestDB opens an in-memory database closed at test cleanup.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates database file and directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "audit.db")

		db, err := Open(context.Background(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
		}
	})

	t.Run("empty path rejected", func(t *testing.T) {
		if _, err := Open(context.Background(), Config{}); err == nil {
			t.Error("Open() with empty path should fail")
		}
	})
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	db.Close() //nolint:errcheck // Closing to force failure
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed database should fail")
	}
}

func TestMigrate(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	_, pending, err := db.MigrationStatus(ctx)
	if err == nil {
		t.Fatal("MigrationStatus() before Migrate should fail without schema_migrations")
	}
	if pending != nil {
		t.Errorf("pending = %v on error", pending)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Fatalf("applied=%d pending=%d, want 2/0", len(applied), len(pending))
	}
	if applied[0].Version != "20260101_000000" || applied[1].Version != "20260102_090000" {
		t.Errorf("applied versions = %v", applied)
	}

	// Second migration ran after the first: colour column exists.
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (id, name, colour) VALUES ('w1', 'dial', 'grey')"); err != nil {
		t.Errorf("insert into migrated table: %v", err)
	}

	// Idempotent.
	if err := db.Migrate(ctx); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestLoadMigrations(t *testing.T) {
	useTestMigrations(t)

	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("loaded %d migrations, want 2", len(migrations))
	}
	first := migrations[0]
	if first.Name != "widgets" || first.DownSQL == "" {
		t.Errorf("first migration = %+v", first)
	}
	if migrations[1].DownSQL != "" {
		t.Error("second migration should have no down SQL")
	}
}

func TestLoadMigrations_NothingEmbedded(t *testing.T) {
	prevFS, prevDir := MigrationsFS, MigrationsDir
	MigrationsFS, MigrationsDir = embed.FS{}, "."
	defer func() { MigrationsFS, MigrationsDir = prevFS, prevDir }()

	migrations, err := loadMigrations()
	if err != nil || len(migrations) != 0 {
		t.Errorf("loadMigrations() = %v, %v; want empty, nil", migrations, err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_audit_logs.up.sql", "20260118_120000", "audit_logs", true, true},
		{"20260118_120000_audit_logs.down.sql", "20260118_120000", "audit_logs", false, true},
		{"20260118_120000.up.sql", "20260118_120000", "20260118_120000", true, true},
		{"20260118.up.sql", "", "", false, false},
		{"20260118_120000_audit_logs.sql", "", "", false, false},
		{"README.txt", "", "", false, false},
	}

	for _, tt := range tests {
		version, name, isUp, ok := parseMigrationFilename(tt.filename)
		if version != tt.wantVersion || name != tt.wantName || isUp != tt.wantUp || ok != tt.wantOK {
			t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v, %v), want (%q, %q, %v, %v)",
				tt.filename, version, name, isUp, ok,
				tt.wantVersion, tt.wantName, tt.wantUp, tt.wantOK)
		}
	}
}
