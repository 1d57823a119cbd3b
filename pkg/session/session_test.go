package session

import (
	"context"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	user := &User{Email: "jane@example.com", Name: "Jane Doe"}
	sess, err := New(user, time.Hour)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.User != user {
		t.Error("user not attached")
	}
	if sess.IsExpired() {
		t.Error("fresh session should not be expired")
	}
	if sess.UserID() != "email:jane@example.com" {
		t.Errorf("UserID() = %q", sess.UserID())
	}
}

func TestUserIDNormalization(t *testing.T) {
	sess := &Session{User: &User{Email: "Jane@Example.COM"}}
	if sess.UserID() != "email:jane@example.com" {
		t.Errorf("UserID() = %q, want lowercased", sess.UserID())
	}

	var nilSess *Session
	if nilSess.UserID() != "" {
		t.Error("nil session UserID should be empty")
	}
	if (&Session{}).UserID() != "" {
		t.Error("session without user UserID should be empty")
	}
}

func TestGenerateIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID() failed: %v", err)
		}
		if seen[id] {
			t.Fatal("GenerateID produced a duplicate")
		}
		seen[id] = true
	}
}

func TestWhitelist(t *testing.T) {
	w := NewWhitelist([]string{"Jane@Example.com", " owner@cv.dev ", ""})

	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"JANE@EXAMPLE.COM", true},
		{"owner@cv.dev", true},
		{" owner@cv.dev ", true},
		{"intruder@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := w.Allowed(tt.email); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}

	// Empty whitelist denies everyone
	empty := NewWhitelist(nil)
	if empty.Allowed("jane@example.com") {
		t.Error("empty whitelist should deny")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := New(&User{Email: "jane@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Missing session
	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	// Round trip
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err = store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || got.User.Email != "jane@example.com" {
		t.Errorf("Get() = %+v", got)
	}

	// Expired session
	expired := &Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	_ = store.Set(ctx, expired)
	got, err = store.Get(ctx, "old")
	if err != ErrExpired {
		t.Errorf("Get(expired) error = %v, want ErrExpired", err)
	}
	if got != nil {
		t.Error("expired session should not be returned")
	}

	// Delete
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	got, _ = store.Get(ctx, sess.ID)
	if got != nil {
		t.Error("deleted session still retrievable")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live, _ := New(&User{Email: "live@example.com"}, time.Hour)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, &Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)})

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if got, _ := store.Get(ctx, live.ID); got == nil {
		t.Error("live session removed by cleanup")
	}
	if _, ok := store.sessions["stale"]; ok {
		t.Error("stale session survived cleanup")
	}
}

func TestMemoryStateStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	state, err := store.Generate(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	// First validation succeeds
	ok, err := store.Validate(ctx, state)
	if err != nil || !ok {
		t.Errorf("Validate() = %v, %v; want true, nil", ok, err)
	}

	// Single use: second validation fails
	ok, _ = store.Validate(ctx, state)
	if ok {
		t.Error("state token should be single-use")
	}

	// Unknown token
	ok, _ = store.Validate(ctx, "bogus")
	if ok {
		t.Error("unknown state token should fail")
	}

	// Expired token
	expired, _ := store.Generate(ctx, -time.Minute)
	ok, _ = store.Validate(ctx, expired)
	if ok {
		t.Error("expired state token should fail")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}

	sess, _ := New(&User{Email: "jane@example.com", Name: "Jane"}, time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got == nil || got.User.Name != "Jane" {
		t.Errorf("Get() = %+v", got)
	}

	// Expired sessions are removed on read
	expired := &Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	_ = store.Set(ctx, expired)
	got, err = store.Get(ctx, "stale")
	if err != nil || got != nil {
		t.Errorf("Get(expired) = %v, %v; want nil, nil", got, err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	got, _ = store.Get(ctx, sess.ID)
	if got != nil {
		t.Error("deleted session still retrievable")
	}
}

func TestMockLocal(t *testing.T) {
	sess := MockLocal()
	if sess.IsExpired() {
		t.Error("local session should not expire")
	}
	if sess.User == nil || sess.User.Email == "" {
		t.Error("local session should carry a user")
	}
}
