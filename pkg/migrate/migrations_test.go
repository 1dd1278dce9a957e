package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sreejithpv/keralacart-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitSchemaContainsStockConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CHECK (total_stock >= 0 AND online_stock >= 0)",
		"CHECK (online_stock <= total_stock)",
		"REFERENCES products (id) ON DELETE SET NULL",
		"CHECK (rating BETWEEN 1 AND 5)",
		"CREATE UNIQUE INDEX idx_reviews_product_buyer ON reviews (product_id, buyer_id)",
		"CHECK (quantity > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
