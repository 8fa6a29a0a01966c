package database

import (
	"path"
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			runner, err := NewMigrationsRunner(nil, driver)
			if err != nil {
				t.Fatalf("Expected NewMigrationsRunner to succeed: %v", err)
			}

			migrations := runner.Migrations()
			if len(migrations) < 2 {
				t.Fatalf("Expected at least 2 migrations, got %d", len(migrations))
			}

			for i := 1; i < len(migrations); i++ {
				if migrations[i-1].Version >= migrations[i].Version {
					t.Errorf("Expected migrations to be sorted by version, but %d >= %d",
						migrations[i-1].Version, migrations[i].Version)
				}
			}

			for _, migration := range migrations {
				if migration.Version == 0 || migration.Name == "" || migration.SQL == "" {
					t.Errorf("Expected a complete migration, got %+v", migration)
				}
			}

			if migrations[0].Name != "initial_schema" {
				t.Errorf("Expected first migration to be initial_schema, got %s", migrations[0].Name)
			}
		})
	}
}

func TestLoadMigrations_UnknownDriver(t *testing.T) {
	if _, err := NewMigrationsRunner(nil, "oracle"); err == nil {
		t.Error("Expected an error for a driver without migrations")
	}
}

func TestMigrationsMatchAcrossDrivers(t *testing.T) {
	sqliteFiles, err := migrationFiles.ReadDir(path.Join("sql", DriverSQLite))
	if err != nil {
		t.Fatalf("Failed to read sqlite migrations: %v", err)
	}
	postgresFiles, err := migrationFiles.ReadDir(path.Join("sql", DriverPostgres))
	if err != nil {
		t.Fatalf("Failed to read postgres migrations: %v", err)
	}

	if len(sqliteFiles) != len(postgresFiles) {
		t.Fatalf("Expected the same number of migrations per driver, got %d and %d", len(sqliteFiles), len(postgresFiles))
	}
	for i := range sqliteFiles {
		if sqliteFiles[i].Name() != postgresFiles[i].Name() {
			t.Errorf("Expected matching migration names, got %s and %s", sqliteFiles[i].Name(), postgresFiles[i].Name())
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	dm := setupTestDatabaseManager(t)

	runner, err := NewMigrationsRunner(dm.db, dm.driver)
	if err != nil {
		t.Fatalf("Expected NewMigrationsRunner to succeed: %v", err)
	}
	runner.DisableLogging()

	if err := runner.Run(); err != nil {
		t.Fatalf("Expected second Run to succeed: %v", err)
	}

	applied, err := runner.getAppliedMigrations()
	if err != nil {
		t.Fatalf("Expected getAppliedMigrations to succeed: %v", err)
	}
	if len(applied) != len(runner.migrations) {
		t.Errorf("Expected %d migrations, got %d", len(runner.migrations), len(applied))
	}
	for _, migration := range runner.migrations {
		if !applied[migration.Version] {
			t.Errorf("Expected migration %d to be applied", migration.Version)
		}
	}
}

func TestRun_TransactionRollback(t *testing.T) {
	dm := setupTestDatabaseManager(t)

	runner, err := NewMigrationsRunner(dm.db, dm.driver)
	if err != nil {
		t.Fatalf("Expected NewMigrationsRunner to succeed: %v", err)
	}
	runner.DisableLogging()

	runner.migrations = append(runner.migrations, Migration{
		Version: 99999,
		Name:    "invalid_migration",
		SQL:     "CREATE TABLE half_done (id INTEGER); THIS IS INVALID SQL;",
	})

	err = runner.Run()
	if err == nil {
		t.Fatal("Expected Run to fail with invalid SQL")
	}
	if !strings.Contains(err.Error(), "failed to apply migration") {
		t.Errorf("Expected error message to contain 'failed to apply migration', got: %v", err)
	}

	applied, err := runner.getAppliedMigrations()
	if err != nil {
		t.Fatalf("Expected getAppliedMigrations to succeed: %v", err)
	}
	if applied[99999] {
		t.Error("Expected invalid migration to not be recorded")
	}
	if n := countRows(t, dm, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'half_done'`); n != 0 {
		t.Errorf("Expected the partial migration to be rolled back, found %d table(s)", n)
	}
}
