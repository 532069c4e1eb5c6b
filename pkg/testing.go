package pkg

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/onlinecourse-service/internal/config"
)

// NewTestDatabase opens a migrated in-memory sqlite database private to t
func NewTestDatabase(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		Environment: config.EnvProduction,
		Database: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
			AutoMigrate: true,
		},
	}

	db, err := InitDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
