package db

import (
	"testing"
)

// SetupTestDB creates an in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *Database {
	t.Helper()

	database, err := NewDatabase(DriverSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if database.GetDB() != nil {
			_ = database.Close()
		}
	})

	return database
}
