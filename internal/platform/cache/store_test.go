package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_Get_EvictsExpiredEntry(t *testing.T) {
	t.Parallel()

	store := NewStore(60 * time.Second)
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "standings:PL", "table")

	now = now.Add(59 * time.Second)
	if _, ok := store.Get(context.Background(), "standings:PL"); !ok {
		t.Fatal("entry should still be fresh before TTL elapses")
	}

	now = now.Add(2 * time.Second)
	if _, ok := store.Get(context.Background(), "standings:PL"); ok {
		t.Fatal("entry should be evicted after TTL elapses")
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expected empty store after eviction, got %d entries", got)
	}
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "a", 1)
	store.Set(context.Background(), "b", 2)

	if removed := store.Clear(context.Background()); removed != 2 {
		t.Fatalf("Clear removed %d entries, want 2", removed)
	}
	if _, ok := store.Get(context.Background(), "a"); ok {
		t.Fatal("entry survived Clear")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "standings:PL", 1)
	store.Set(context.Background(), "standings:SA", 2)
	store.Set(context.Background(), "fixtures:PL", 3)

	if removed := store.DeletePrefix(context.Background(), "standings:"); removed != 2 {
		t.Fatalf("DeletePrefix removed %d entries, want 2", removed)
	}
	if _, ok := store.Get(context.Background(), "fixtures:PL"); !ok {
		t.Fatal("unrelated entry should survive DeletePrefix")
	}
}

func TestRequestKey_ParamOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	a := RequestKey("https://api.example.com/v4/competitions/PL/matches", map[string]string{
		"dateFrom": "2026-08-20",
		"dateTo":   "2026-08-30",
		"status":   "SCHEDULED,TIMED",
	})
	b := RequestKey("https://api.example.com/v4/competitions/PL/matches", map[string]string{
		"status":   "SCHEDULED,TIMED",
		"dateTo":   "2026-08-30",
		"dateFrom": "2026-08-20",
	})

	if a != b {
		t.Fatalf("keys differ for identical params:\n%s\n%s", a, b)
	}

	c := RequestKey("https://api.example.com/v4/competitions/PL/matches", map[string]string{
		"dateFrom": "2026-08-21",
	})
	if a == c {
		t.Fatal("keys should differ when params differ")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
