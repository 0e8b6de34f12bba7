package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cambria/academy/storage/database"
)

// PrepareDB opens the database named by TEST_DATABASE_URL, migrates it and empties every table.
// The test is skipped when the variable is unset or the database is unreachable.
func PrepareDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("PrepareDB() open failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() migrate failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE notifications, hour_entries, clock_locations, users CASCADE"); err != nil {
		t.Fatalf("PrepareDB() truncate failed: %v", err)
	}
	return db
}
