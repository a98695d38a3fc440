package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/vecrud/internal/db"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	val := []byte{1, 2, 3, 4}
	if err := s.Set(ctx, "k", val); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val[0] = 9

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 1 {
		t.Errorf("stored value must be copied, got %v", got)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte{1}, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("unexpected error before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}
