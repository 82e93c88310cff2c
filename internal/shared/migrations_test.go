package shared

import (
	"context"
	"strings"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d missing SQL", m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d missing name", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"artists", "tracks"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM tracks LIMIT 1"); err == nil {
			t.Error("tracks table should be dropped after rollback")
		}

		statuses, err := Migrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to read migration status: %v", err)
		}
		if !statuses[0].Applied || statuses[len(statuses)-1].Applied {
			t.Errorf("expected only the latest migration to be rolled back, got %+v", statuses)
		}
	})

	t.Run("Rollback With Nothing Applied", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := Migrations(ctx, db); err != nil {
			t.Fatalf("failed to read migration status: %v", err)
		}
		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error when nothing has been applied")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("Semicolon In Comment", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(ctx, db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		script := `-- widgets; keyed by name
CREATE TABLE widgets (
    name TEXT NOT NULL -- unique; see below
);
-- index; on name
CREATE UNIQUE INDEX idx_widgets_name ON widgets(name);`

		if err := execMigration(ctx, db, 99, script, true); err != nil {
			t.Fatalf("failed to execute script: %v", err)
		}
		if _, err := db.Exec("SELECT name FROM widgets LIMIT 1"); err != nil {
			t.Errorf("widgets table should exist: %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"single", "CREATE TABLE a (id INTEGER);", 1},
		{"two", "CREATE TABLE a (id INTEGER);\nCREATE TABLE b (id INTEGER);", 2},
		{"comment with semicolon", "-- a; b\nCREATE TABLE a (id INTEGER);", 1},
		{"trailing comment with semicolon", "CREATE TABLE a (\n  id INTEGER -- key; primary\n);", 1},
		{"comments only", "-- nothing; here\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitStatements(tt.script)
			if len(got) != tt.want {
				t.Fatalf("expected %d statements, got %d: %q", tt.want, len(got), got)
			}
			for _, stmt := range got {
				if strings.Contains(stmt, "--") {
					t.Errorf("expected comments stripped, got %q", stmt)
				}
			}
		})
	}

	t.Run("Embedded Migrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		for _, m := range migrations {
			for _, stmt := range splitStatements(m.Up) {
				if !strings.HasPrefix(stmt, "CREATE") {
					t.Errorf("migration %d: unexpected statement %q", m.Version, stmt)
				}
			}
		}
	})
}
