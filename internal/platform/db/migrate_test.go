package db

import (
	"strings"
	"testing"
)

const migrationsDir = "../../../migrations"

func TestLoadMigrations_ParsesVersionedFiles(t *testing.T) {
	m := NewMigrator(nil, migrationsDir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
	if migrations[0].Version != 1 {
		t.Errorf("expected first migration version 1, got %d", migrations[0].Version)
	}
	if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS patient") {
		t.Error("expected core migration to create the patient table")
	}
}

// The domain models bind optional fields as pointers and the repositories
// insert every column explicitly, so an omitted field reaches postgres as
// NULL. The DDL must keep those columns nullable or a minimal valid create
// (a patient with just MRN and name, an appointment without a room) is
// rejected with a not-null violation.
func TestCoreSchema_OptionalColumnsNullable(t *testing.T) {
	m := NewMigrator(nil, migrationsDir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var core string
	for _, mig := range migrations {
		if mig.Version == 1 {
			core = mig.SQL
		}
	}
	if core == "" {
		t.Fatal("core migration not found")
	}

	optional := map[string][]string{
		"patient": {"gender", "birth_date", "blood_type", "phone", "email",
			"address_line", "address_city", "address_postal_code",
			"emergency_contact", "emergency_phone"},
		"staff":        {"specialty", "phone", "email"},
		"appointment":  {"room", "reason", "note"},
		"prescription": {"instructions", "dispensed_by", "dispensed_at"},
		"ward":         {"floor"},
		"bed":          {"patient_id", "assigned_at"},
	}

	for table, cols := range optional {
		ddl := tableDDL(t, core, table)
		for _, col := range cols {
			line := columnLine(t, ddl, table, col)
			if strings.Contains(line, "NOT NULL") {
				t.Errorf("%s.%s must be nullable, got %q", table, col, strings.TrimSpace(line))
			}
		}
	}
}

func tableDDL(t *testing.T, sql, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(sql, marker)
	if start < 0 {
		t.Fatalf("no CREATE TABLE for %s", table)
	}
	rest := sql[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated CREATE TABLE for %s", table)
	}
	return rest[:end]
}

func columnLine(t *testing.T, ddl, table, col string) string {
	t.Helper()
	for _, line := range strings.Split(ddl, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), col+" ") {
			return line
		}
	}
	t.Fatalf("column %s.%s not found", table, col)
	return ""
}
