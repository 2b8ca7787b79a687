// Package seedtest opens throwaway store databases for tests.
package seedtest

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/subtelemetry/internal/seed"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	pkgdb "github.com/railzwaylabs/subtelemetry/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Prefix is the table prefix used by every test database.
const Prefix = "wp_"

func Tables() storage.Tables {
	return storage.NewTables(Prefix)
}

// Open returns an empty in-memory store named after the test, with every
// table of both layouts created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := pkgdb.SQLiteDSN("file:" + name + "?mode=memory&cache=shared")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := seed.CreateTables(db, Tables()); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

// OpenWith opens a store and writes the dataset in the given layout.
func OpenWith(t testing.TB, schema storage.Schema, ds seed.Dataset) *gorm.DB {
	t.Helper()

	db := Open(t)
	if err := seed.Write(t.Context(), db, schema, Tables(), ds); err != nil {
		t.Fatalf("seed %s: %v", schema, err)
	}
	return db
}

// Schemas lists both layouts for contract tests.
func Schemas() []storage.Schema {
	return []storage.Schema{storage.SchemaOrders, storage.SchemaPosts}
}
