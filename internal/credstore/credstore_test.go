package credstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sobesednik/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	key, err := LoadOrCreateKey(filepath.Join(dir, "vault.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey failed: %v", err)
	}

	store, err := Open(filepath.Join(dir, "vault.db"), key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCredential() Credential {
	return Credential{
		AccessToken:  "access-token-123",
		RefreshToken: "refresh-token-456",
		User: models.User{
			ID:          "u1",
			Username:    "alice",
			DisplayName: "Alice",
			Email:       "alice@example.com",
		},
	}
}

func TestStore_EmptyVault(t *testing.T) {
	store := testStore(t)

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("empty vault reported a credential")
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	store := testStore(t)
	want := testCredential()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("credential not found after save")
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("token mismatch: got %+v", got)
	}
	if got.User.Username != "alice" || got.User.Email != "alice@example.com" {
		t.Errorf("user mismatch: got %+v", got.User)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	store := testStore(t)

	if err := store.Save(testCredential()); err != nil {
		t.Fatal(err)
	}
	updated := testCredential()
	updated.AccessToken = "rotated"
	if err := store.Save(updated); err != nil {
		t.Fatal(err)
	}

	got, ok, _ := store.Load()
	if !ok || got.AccessToken != "rotated" {
		t.Errorf("expected rotated token, got %+v", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store := testStore(t)

	if err := store.Save(testCredential()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("credential still present after clear")
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestStore_TokensSealedOnDisk(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "vault.db")

	key, err := LoadOrCreateKey(filepath.Join(dir, "vault.key"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := Open(dbPath, key)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(testCredential()); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("access-token-123")) {
		t.Error("access token stored in plaintext")
	}
	if bytes.Contains(raw, []byte("refresh-token-456")) {
		t.Error("refresh token stored in plaintext")
	}
}

func TestLoadOrCreateKey_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")

	first, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("key changed between loads")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file mode %v, want 0600", info.Mode().Perm())
	}
}
