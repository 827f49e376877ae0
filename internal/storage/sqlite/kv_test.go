package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *KVRepo {
	t.Helper()
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewKVRepo(db)
}

func TestKVRepo_MissingKey(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, ok, err := repo.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestKVRepo_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, err := repo.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key present")
	}
	if string(got) != "two" {
		t.Errorf("Get = %s, want last write", got)
	}
}

func TestKVRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Error("key still present after Delete")
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting absent key = %v, want nil", err)
	}
}
