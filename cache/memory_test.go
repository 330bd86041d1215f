package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if _, ok, _ := m.GetString(ctx, "missing"); ok {
		t.Error("unexpected hit on empty store")
	}

	if err := m.SetString(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	value, ok, err := m.GetString(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Errorf("GetString = (%q, %v, %v), want (v, true, nil)", value, ok, err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	m.SetString(ctx, "k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := m.GetString(ctx, "k"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	m.SetString(ctx, "k", "old", time.Minute)
	m.SetString(ctx, "k", "new", time.Minute)

	value, ok, _ := m.GetString(ctx, "k")
	if !ok || value != "new" {
		t.Errorf("GetString = (%q, %v), want (new, true)", value, ok)
	}
}
