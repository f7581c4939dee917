package db_test

import (
	"testing"

	"github.com/vrsandeep/casetrack-go/internal/testutil"
)

func TestMigrationsCreateCasesTable(t *testing.T) {
	// Setup test database with migrations already applied
	conn := testutil.SetupTestDB(t)

	// Verify foreign keys are enabled
	var foreignKeysEnabled int
	if err := conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeysEnabled); err != nil {
		t.Fatalf("Failed to check foreign keys status: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Errorf("Foreign keys should be enabled, got: %d", foreignKeysEnabled)
	}

	// The cases table exists with the expected defaults.
	_, err := conn.Exec("INSERT INTO cases (case_name) VALUES (?)", "State v. Test")
	if err != nil {
		t.Fatalf("Failed to insert into cases: %v", err)
	}

	var status, processing string
	err = conn.QueryRow("SELECT status, processing_status FROM cases WHERE case_name = ?", "State v. Test").
		Scan(&status, &processing)
	if err != nil {
		t.Fatalf("Failed to query inserted case: %v", err)
	}
	if status != "Open" {
		t.Errorf("Expected default status 'Open', got '%s'", status)
	}
	if processing != "idle" {
		t.Errorf("Expected default processing_status 'idle', got '%s'", processing)
	}

	// The status CHECK constraint rejects unknown values.
	if _, err := conn.Exec("INSERT INTO cases (case_name, status) VALUES (?, ?)", "Bad", "Mistrial"); err == nil {
		t.Error("Expected CHECK constraint violation for unknown status")
	}
}
