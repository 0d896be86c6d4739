package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/migration"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
)

// TestPassword satisfies the registration password policy.
const TestPassword = "Secret1!"

// Epoch is the fixed starting instant for fake clocks in tests.
var Epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// SetupTestDB opens a fresh, migrated SQLite database in a temp directory.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "polls.db")
	db, err := repository.Open(ctx, repository.DriverSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migration.RunMigrations(ctx, db, repository.DriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// SetupTestStore wraps SetupTestDB in a repository.Store.
func SetupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(SetupTestDB(t))
}

// CreateTestUser registers a user with TestPassword.
func CreateTestUser(t *testing.T, store *repository.Store, email string) models.User {
	t.Helper()

	user, err := store.Users.CreateUser(context.Background(), email, TestPassword, Epoch)
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", email, err)
	}
	return user
}

// CountRows counts rows of table matching a "column = value" filter.
func CountRows(t *testing.T, db *sql.DB, table, column, value string) int {
	t.Helper()

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", table, column)
	if err := db.QueryRow(query, value).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
