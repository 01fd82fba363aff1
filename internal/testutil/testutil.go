package testutil

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/xelth-com/pantrywms/internal/database"
	"github.com/xelth-com/pantrywms/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// baseDSN points at the server tests create their schemas in
var baseDSN string

// Run starts a throwaway PostgreSQL for the package's tests, unless
// TEST_DATABASE_DSN names an existing server. Call it from TestMain.
func Run(m *testing.M) int {
	if dsn := os.Getenv("TEST_DATABASE_DSN"); dsn != "" {
		baseDSN = dsn
		return m.Run()
	}

	port, err := freePort()
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: free port: %v\n", err)
		return 1
	}

	dir, err := os.MkdirTemp("", "pantrywms-pg-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: temp dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(dir)

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(port).
		RuntimePath(filepath.Join(dir, "runtime")).
		DataPath(filepath.Join(dir, "data")).
		Database("pantry_test").
		Logger(io.Discard))
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "testutil: start embedded postgres: %v\n", err)
		return 1
	}
	defer pg.Stop()

	baseDSN = database.DSN("localhost", fmt.Sprint(port), "postgres", "postgres", "pantry_test")
	return m.Run()
}

// freePort asks the kernel for an unused port so packages can test in parallel
func freePort() (uint32, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return uint32(l.Addr().(*net.TCPAddr).Port), nil
}

// SetupTestDB opens a connection bound to a fresh schema with every table
// migrated. The schema is dropped when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if baseDSN == "" {
		t.Fatal("testutil.Run was not called from TestMain")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	admin, err := database.Open(baseDSN, logger.Silent)
	if err != nil {
		t.Fatalf("Failed to connect for schema setup: %v", err)
	}
	if err := admin.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	db, err := database.Open(baseDSN+" search_path="+schema, logger.Silent)
	if err != nil {
		t.Fatalf("Failed to connect to test schema: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		admin.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE")
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Fixtures are the reference rows seeded for a test
type Fixtures struct {
	Evans    models.BoxType
	Small    models.BoxType
	Corn     models.Product
	Beans    models.Product
	Peaches  models.Product
	Loc0102A models.Location // 01 02 A1
	Loc0103B models.Location // 01 03 B1
	Loc0201A models.Location // 02 01 A1
}

// TestReference is a small warehouse used by tests
func TestReference() database.ReferenceData {
	return database.ReferenceData{
		Rows:  []string{"01", "02"},
		Bins:  []string{"01", "02", "03"},
		Tiers: []string{"A1", "B1"},
		Catalog: map[string][]string{
			"Vegetables": {"Corn", "Green Beans"},
			"Fruit":      {"Peaches"},
		},
		BoxTypes: []models.BoxType{
			{Code: "Evans", Description: "Evans box", DefaultQty: 12},
			{Code: "Small", Description: "Small box", DefaultQty: 6},
		},
	}
}

// Seed loads TestReference into db and returns the rows tests refer to
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	if _, err := database.SeedReference(db, TestReference()); err != nil {
		t.Fatalf("Failed to seed reference data: %v", err)
	}

	f := &Fixtures{}
	mustFind(t, db.Where("code = ?", "Evans").First(&f.Evans))
	mustFind(t, db.Where("code = ?", "Small").First(&f.Small))
	mustFind(t, db.Preload("Category").Where("name = ?", "Corn").First(&f.Corn))
	mustFind(t, db.Preload("Category").Where("name = ?", "Green Beans").First(&f.Beans))
	mustFind(t, db.Preload("Category").Where("name = ?", "Peaches").First(&f.Peaches))
	mustFind(t, db.Where("code = ?", "0102A1").First(&f.Loc0102A))
	mustFind(t, db.Where("code = ?", "0103B1").First(&f.Loc0103B))
	mustFind(t, db.Where("code = ?", "0201A1").First(&f.Loc0201A))
	return f
}

func mustFind(t *testing.T, result *gorm.DB) {
	t.Helper()
	if result.Error != nil {
		t.Fatalf("Failed to load fixture: %v", result.Error)
	}
}
