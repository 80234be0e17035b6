package shared

import (
	"database/sql"
	"testing"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func appliedVersions(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	return n
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations")
	}

	for i, m := range migrations {
		if i > 0 && m.Version <= migrations[i-1].Version {
			t.Errorf("version %d listed after %d", m.Version, migrations[i-1].Version)
		}
		if m.Up == "" || m.Down == "" {
			t.Errorf("version %d is missing a direction (up=%t down=%t)", m.Version, m.Up != "", m.Down != "")
		}
	}
}

func TestRunMigrations(t *testing.T) {
	t.Run("History Schema", func(t *testing.T) {
		db := migratedDB(t)

		for _, table := range []string{"runs", "runs_sequence", "recommendations"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("table %s missing: %v", table, err)
			}
		}

		var seq int
		if err := db.QueryRow("SELECT value FROM runs_sequence WHERE id = 1").Scan(&seq); err != nil || seq != 0 {
			t.Errorf("runs_sequence should start at 0, got %d (%v)", seq, err)
		}
	})

	t.Run("Rank Unique Per Run", func(t *testing.T) {
		db := migratedDB(t)

		_, err := db.Exec(`INSERT INTO runs (id, sequence, catalog_path, liked_path, seed, created_at, updated_at)
			VALUES ('r1', 1, 'catalog.csv', 'liked.csv', 42, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}

		insert := `INSERT INTO recommendations (id, run_id, rank, track_id, track_name, artists, probability, created_at)
			VALUES (?, 'r1', 1, 't', 'Song', 'Artist', 0.9, CURRENT_TIMESTAMP)`
		if _, err := db.Exec(insert, "a"); err != nil {
			t.Fatalf("first insert: %v", err)
		}
		if _, err := db.Exec(insert, "b"); err == nil {
			t.Error("duplicate rank within a run should be rejected")
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := migratedDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second RunMigrations() error = %v", err)
		}

		migrations, _ := loadMigrations()
		if got := appliedVersions(t, db); got != len(migrations) {
			t.Errorf("expected %d applied versions, got %d", len(migrations), got)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("Drops Latest", func(t *testing.T) {
		db := migratedDB(t)
		before := appliedVersions(t, db)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("RollbackMigration() error = %v", err)
		}

		if after := appliedVersions(t, db); after != before-1 {
			t.Errorf("expected %d applied versions after rollback, got %d", before-1, after)
		}
		if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err == nil {
			t.Error("runs table should be gone after rollback")
		}
	})

	t.Run("Nothing Applied", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY)"); err != nil {
			t.Fatalf("create schema_migrations: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing has been applied")
		}
	})
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Header And Trailing", in: "-- header\nCREATE TABLE x (id INTEGER) -- trailing\n\n", want: "CREATE TABLE x (id INTEGER)"},
		{name: "Only Comments", in: "-- nothing here\n", want: ""},
		{name: "Plain", in: "DROP TABLE runs", want: "DROP TABLE runs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripComments(tt.in); got != tt.want {
				t.Errorf("stripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
