package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budgetledger/internal/models"
)

func TestDSN(t *testing.T) {
	t.Run("sqlite_enforces_foreign_keys", func(t *testing.T) {
		cfg := &Config{Driver: DriverSQLite, Path: "/tmp/ledger.db"}
		if !strings.Contains(cfg.DSN(), "_foreign_keys=on") {
			t.Errorf("expected foreign keys in DSN, got %q", cfg.DSN())
		}
		if cfg.MigrateURL() != "sqlite:///tmp/ledger.db" {
			t.Errorf("unexpected migrate URL %q", cfg.MigrateURL())
		}
	})

	t.Run("postgres_url_escapes_password", func(t *testing.T) {
		cfg := &Config{Driver: DriverPostgres, Host: "db", Port: "5432", User: "ledger", Password: "p@ss word", DBName: "ledger", SSLMode: "disable"}
		got := cfg.MigrateURL()
		if strings.Contains(got, "p@ss word") {
			t.Errorf("password should be escaped, got %q", got)
		}
		if !strings.HasPrefix(got, "postgres://ledger:") || !strings.HasSuffix(got, "/ledger?sslmode=disable") {
			t.Errorf("unexpected URL %q", got)
		}
	})
}

func TestMigrationsMatchModels(t *testing.T) {
	cfg := &Config{
		Driver:          DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer mgr.Close()

	if err := mgr.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	// A second run is a no-op.
	if err := mgr.RunMigrations(); err != nil {
		t.Fatalf("re-running migrations should succeed: %v", err)
	}

	now := time.Now().UTC()
	cat := &models.Category{Name: "Food", Type: models.CategoryTypeExpense, IsActive: true,
		Base: models.Base{CreatedAt: now, UpdatedAt: now}}
	if err := mgr.DB().Create(cat).Error; err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}

	tx := &models.Transaction{CategoryID: cat.ID, Amount: 12.5, Type: models.TransactionTypeExpense,
		Date: "2024-03-01", Base: models.Base{CreatedAt: now, UpdatedAt: now}}
	if err := mgr.DB().Create(tx).Error; err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}

	orphan := &models.Transaction{CategoryID: cat.ID + 100, Amount: 1, Type: models.TransactionTypeExpense,
		Date: "2024-03-01", Base: models.Base{CreatedAt: now, UpdatedAt: now}}
	if err := mgr.DB().Create(orphan).Error; err == nil {
		t.Error("expected foreign key violation for unknown category")
	}

	mig, err := NewMigrator(cfg)
	if err != nil {
		t.Fatalf("failed to build migrator: %v", err)
	}
	defer mig.Close()
	version, dirty, err := mig.Version()
	if err != nil || version != 2 || dirty {
		t.Errorf("expected clean version 2, got %d dirty=%v err=%v", version, dirty, err)
	}
}
