// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"yuvai/internal/db"
	"yuvai/internal/models"
)

// TestStore creates an empty file-backed store in a temporary directory.
func TestStore(t *testing.T) *db.FileStore {
	t.Helper()

	store, err := db.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// CreateTestAccount stores an account with a placeholder password hash and returns it.
func CreateTestAccount(t *testing.T, store db.AccountStore, username, role string) *models.Account {
	t.Helper()

	acct := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.PutAccount(context.Background(), acct); err != nil {
		t.Fatalf("failed to create test account %q: %v", username, err)
	}

	return acct
}
