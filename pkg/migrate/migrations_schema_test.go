package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harborstay/booking-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsContainConstraints(t *testing.T) {
	cases := map[string][]string{
		"create_room_types": {
			"CREATE TABLE IF NOT EXISTS room_types",
			"CHECK (max_guests >= included_adults)",
			"DROP TABLE IF EXISTS room_types",
		},
		"create_rates": {
			"REFERENCES room_types(id) ON DELETE CASCADE",
			"CHECK (start_date <= end_date)",
			"CHECK (min_los >= 1)",
		},
		"create_inventory_adjustments": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_adjustments_room_day ON inventory_adjustments (room_type_id, day_key)",
			"CHECK (total_units >= 0)",
		},
		"create_bookings": {
			"CHECK (check_in < check_out)",
			"idx_bookings_room_range",
		},
		"create_coupons": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_coupons_code_hash ON coupons (code_hash)",
			"CHECK (type IN ('PERCENT', 'FIXED'))",
		},
		"create_coupon_redemptions": {
			"CHECK (status IN ('RESERVED', 'CONFIRMED', 'RELEASED'))",
			"WHERE status = 'RESERVED' AND booking_id IS NULL",
		},
		"create_coupon_attempt_logs": {
			"idx_coupon_attempt_logs_created_at",
			"DROP TABLE IF EXISTS coupon_attempt_logs",
		},
	}

	for suffix, checks := range cases {
		content := readMigration(t, suffix)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", suffix, sub)
			}
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Rate Notes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_rate_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for empty sanitized name")
	}
}
