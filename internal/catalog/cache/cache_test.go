package cache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/catalog/domain"
	"construbot_backend/platform/logger"
)

// fakeSource is a scriptable catalog source.
type fakeSource struct {
	items   atomic.Value // []domain.Product
	err     atomic.Value // error
	fetches atomic.Int64
}

func newFakeSource(items []domain.Product) *fakeSource {
	s := &fakeSource{}
	if items == nil {
		items = []domain.Product{}
	}
	s.items.Store(items)
	return s
}

func (s *fakeSource) setErr(err error) { s.err.Store(err) }

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	s.fetches.Add(1)
	if err, _ := s.err.Load().(error); err != nil {
		return nil, err
	}
	return s.items.Load().([]domain.Product), nil
}

func testLogger() *logger.Logger { return logger.New("test") }

func TestGet_InitialFetchBlocksAndCaches(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "TEJA", Price: 15}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())

	got := c.Get(context.Background())
	if len(got) != 1 || got[0].Name != "TEJA" {
		t.Fatalf("unexpected products %+v", got)
	}
	if calls := src.fetches.Load(); calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}

	// Fresh snapshot: no further fetches.
	c.Get(context.Background())
	if calls := src.fetches.Load(); calls != 1 {
		t.Fatalf("fresh snapshot refetched: %d calls", calls)
	}
}

func TestGet_InitialFailureCachesEmptySnapshot(t *testing.T) {
	src := newFakeSource(nil)
	src.setErr(errors.New("file missing"))
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())

	if got := c.Get(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %+v", got)
	}
}

func TestForceRefresh_ReportsCounts(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "A", Price: 1}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())
	c.Get(context.Background())

	src.items.Store([]domain.Product{{Name: "A", Price: 1}, {Name: "B", Price: 2}})
	before, after, err := c.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before != 1 || after != 2 {
		t.Fatalf("counts = %d -> %d, want 1 -> 2", before, after)
	}
}

func TestForceRefresh_FailureKeepsLastKnownGood(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "A", Price: 1}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())
	c.Get(context.Background())

	src.setErr(errors.New("source down"))
	before, after, err := c.ForceRefresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if before != 1 || after != 1 {
		t.Fatalf("counts = %d -> %d, want unchanged 1 -> 1", before, after)
	}
	if got := c.Get(context.Background()); len(got) != 1 {
		t.Fatalf("last-known-good snapshot lost: %+v", got)
	}
}

func TestMarkStale_TriggersBackgroundRevalidation(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "A", Price: 1}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())
	c.Get(context.Background())

	src.items.Store([]domain.Product{{Name: "A", Price: 1}, {Name: "B", Price: 2}})
	c.MarkStale()

	// The stale read itself still serves the old snapshot without blocking.
	if got := c.Get(context.Background()); len(got) != 1 {
		t.Fatalf("stale read must serve the previous snapshot, got %d items", len(got))
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if items, _ := c.Stats(); items == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background refresh never landed")
}

func TestLookupAndPriceFor(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "TEJA", Price: 15.5}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())
	c.Get(context.Background())

	if p, ok := c.Lookup("TEJA"); !ok || p.Price != 15.5 {
		t.Fatalf("Lookup = %+v ok=%v", p, ok)
	}
	if price, ok := c.PriceFor("TEJA"); !ok || price != 15.5 {
		t.Fatalf("PriceFor = %f ok=%v", price, ok)
	}
	if _, ok := c.PriceFor("MISSING"); ok {
		t.Fatal("PriceFor must miss unknown products")
	}
}

func TestStats(t *testing.T) {
	src := newFakeSource([]domain.Product{{Name: "A", Price: 1}})
	c := cache.New(src, 10*time.Minute, time.Second, testLogger())

	if items, age := c.Stats(); items != 0 || age != nil {
		t.Fatalf("pre-fetch stats = %d, %v", items, age)
	}

	c.Get(context.Background())
	items, age := c.Stats()
	if items != 1 || age == nil {
		t.Fatalf("post-fetch stats = %d, %v", items, age)
	}
}
