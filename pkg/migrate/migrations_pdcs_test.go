package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/propnest/pdc-engine/pkg/migrate"
)

func TestPDCMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_pdcs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no pdcs migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pdcs",
		"CHECK (amount > 0)",
		"version BIGINT NOT NULL DEFAULT 1",
		"ux_pdcs_tenant_cheque_number",
		"WHERE status <> 'cancelled'",
		"DROP TABLE IF EXISTS pdcs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentsMigrationContainsSettlementGuard(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payments",
		"ux_payments_pdc_purpose",
		"ON payments (pdc_id, purpose)",
		"DROP TABLE IF EXISTS payments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
