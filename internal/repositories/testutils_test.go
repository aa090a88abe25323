package repositories_test

import (
	"testing"

	"github.com/ruliana/technoir-transmission-generator/internal/db"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *db.Database {
	t.Helper()

	dbs, err := db.NewDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}

	// The mode=ro flag doesn't seem to work with :memory: and cache=shared,
	// the query-only pragma covers it.
	if _, err = dbs.ReadOnly.Exec("PRAGMA query_only = TRUE;"); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}
