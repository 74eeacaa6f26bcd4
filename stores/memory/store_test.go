package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ByLCY/mockup/core"
)

func TestPutGetRelease(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	data := []byte("png bytes")
	id, err := store.Put(ctx, &core.Artifact{Filename: "mockup-acme.png", MIME: "image/png", Data: data})
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("Put() returned invalid ID length: got %d, want 26", len(id))
	}

	data[0] = 'X'
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != "png bytes" || got.ID != id || got.CreatedAt.IsZero() {
		t.Fatalf("Get() returned unexpected artifact: %+v", got)
	}

	if err := store.Release(ctx, id); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound after release, got %v", err)
	}
	if err := store.Release(ctx, id); err != nil {
		t.Fatalf("second Release() should be a no-op: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestPutNil(t *testing.T) {
	if _, err := NewStore().Put(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil artifact")
	}
}

func TestConcurrentPut(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Put(ctx, &core.Artifact{Filename: "x.png"})
			if err != nil {
				t.Errorf("Put() failed: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if store.Len() != 50 {
		t.Fatalf("expected 50 artifacts, got %d", store.Len())
	}
}

func TestReleaseSessionAndSweep(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now()

	a, _ := store.Put(ctx, &core.Artifact{Session: "s1", CreatedAt: now})
	store.Put(ctx, &core.Artifact{Session: "s1", CreatedAt: now})
	b, _ := store.Put(ctx, &core.Artifact{Session: "s2", CreatedAt: now.Add(-time.Hour)})
	c, _ := store.Put(ctx, &core.Artifact{Session: "s2", CreatedAt: now})

	n, err := store.ReleaseSession(ctx, "s1")
	if err != nil || n != 2 {
		t.Fatalf("ReleaseSession() = %d, %v; want 2", n, err)
	}
	if _, err := store.Get(ctx, a); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Fatalf("session artifact should be released, got %v", err)
	}

	n, err = store.Sweep(ctx, now.Add(-time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("Sweep() = %d, %v; want 1", n, err)
	}
	if _, err := store.Get(ctx, b); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Fatalf("expired artifact should be swept, got %v", err)
	}
	if _, err := store.Get(ctx, c); err != nil {
		t.Fatalf("fresh artifact should remain: %v", err)
	}
}
