package session

import (
	"path/filepath"
	"testing"
)

func TestLoginAndCurrent(t *testing.T) {
	store := NewStore(NewMemStorage())

	if store.Current() != nil {
		t.Fatal("fresh store should have no session")
	}

	err := store.Login("abc", User{ID: "u-1", Name: "Alice", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess := store.Current()
	if sess == nil {
		t.Fatal("expected a session after login")
	}
	if sess.Token != "abc" {
		t.Errorf("expected token abc, got %q", sess.Token)
	}
	if sess.User.Name != "Alice" {
		t.Errorf("expected user Alice, got %q", sess.User.Name)
	}
	if store.Token() != "abc" {
		t.Errorf("Token() should return the active token")
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	store := NewStore(NewMemStorage())

	if err := store.Login("", User{ID: "u-1"}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if store.Current() != nil {
		t.Error("failed login should leave no session")
	}
}

func TestLogoutClearsBoth(t *testing.T) {
	storage := NewMemStorage()
	store := NewStore(storage)

	if err := store.Login("abc", User{ID: "u-1", Name: "Alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Current() != nil {
		t.Error("session should be gone after logout")
	}
	if store.Token() != "" {
		t.Error("token should be empty after logout")
	}

	for _, key := range []string{"token", "user"} {
		if v, _ := storage.Get(key); v != "" {
			t.Errorf("key %q should be cleared, got %q", key, v)
		}
	}
}

func TestStorageFailureKeepsPriorState(t *testing.T) {
	t.Run("failed token write keeps logged-out state", func(t *testing.T) {
		storage := NewMemStorage()
		storage.FailSet["token"] = true
		store := NewStore(storage)

		if err := store.Login("abc", User{ID: "u-1"}); err == nil {
			t.Fatal("expected set error")
		}
		if store.Current() != nil {
			t.Error("failed login should not produce a session")
		}
	})

	t.Run("failed user write rolls back the token", func(t *testing.T) {
		storage := NewMemStorage()
		storage.FailSet["user"] = true
		store := NewStore(storage)

		if err := store.Login("abc", User{ID: "u-1"}); err == nil {
			t.Fatal("expected set error")
		}
		if store.Current() != nil {
			t.Error("failed login should not produce a session")
		}
		if v, _ := storage.Get("token"); v != "" {
			t.Errorf("token key should be rolled back, got %q", v)
		}
	})

	t.Run("failed logout keeps session", func(t *testing.T) {
		storage := NewMemStorage()
		store := NewStore(storage)
		if err := store.Login("abc", User{ID: "u-1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		storage.FailDelete["token"] = true
		if err := store.Logout(); err == nil {
			t.Fatal("expected delete error")
		}
		if store.Current() == nil {
			t.Error("failed logout should keep the session")
		}
	})
}

func TestPersistenceAcrossStores(t *testing.T) {
	storage := NewMemStorage()

	first := NewStore(storage)
	if err := first.Login("abc", User{ID: "u-1", Name: "Alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := NewStore(storage)
	sess := second.Current()
	if sess == nil {
		t.Fatal("second store should load the persisted session")
	}
	if sess.Token != "abc" || sess.User.Name != "Alice" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestRehydrationNeedsBothKeys(t *testing.T) {
	t.Run("token without user", func(t *testing.T) {
		storage := NewMemStorage()
		_ = storage.Set("token", "abc")

		if NewStore(storage).Current() != nil {
			t.Error("token without a user record should not rehydrate")
		}
	})

	t.Run("user without token", func(t *testing.T) {
		storage := NewMemStorage()
		_ = storage.Set("user", `{"id":"u-1","name":"Alice"}`)

		if NewStore(storage).Current() != nil {
			t.Error("user record without a token should not rehydrate")
		}
	})

	t.Run("corrupt user record", func(t *testing.T) {
		storage := NewMemStorage()
		_ = storage.Set("token", "abc")
		_ = storage.Set("user", "{not json")

		if NewStore(storage).Current() != nil {
			t.Error("corrupt user record should not rehydrate")
		}
	})
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "expensedesk.json")
	storage := NewFileStorage(path)

	v, err := storage.Get("token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "" {
		t.Errorf("missing file should read as empty, got %q", v)
	}

	if err := storage.Set("token", "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := storage.Set("language", "ar"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err = storage.Get("token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "abc" {
		t.Errorf("expected abc, got %q", v)
	}

	if err := storage.Delete("token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ = storage.Get("token")
	if v != "" {
		t.Errorf("deleted key should read as empty, got %q", v)
	}
	v, _ = storage.Get("language")
	if v != "ar" {
		t.Errorf("other keys should survive a delete, got %q", v)
	}

	// Deleting twice is fine.
	if err := storage.Delete("token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
