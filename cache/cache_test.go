package cache

import (
	"testing"
	"time"

	"github.com/brightwell-labs/fetchcore/models"
)

func TestKey_SameInputsProduceSameKey(t *testing.T) {
	a := Key("https://example.com/a", "CHROME_143")
	b := Key("https://example.com/a", "CHROME_143")
	if a != b {
		t.Error("expected identical inputs to hash to the same key")
	}
}

func TestKey_DifferentInputsProduceDifferentKeys(t *testing.T) {
	a := Key("https://example.com/a", "CHROME_143")
	b := Key("https://example.com/b", "CHROME_143")
	if a == b {
		t.Error("expected different URLs to hash to different keys")
	}
}

func TestGetSet_RoundTripsWithinTTL(t *testing.T) {
	c := New(10, 0)
	defer c.Close()
	want := models.FetchResult{Success: true, URL: "https://example.com/a"}
	c.Set("k", want)

	got, ok := c.Get("k", time.Minute)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.URL != want.URL {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGet_ZeroTTLAlwaysMisses(t *testing.T) {
	c := New(10, 0)
	defer c.Close()
	c.Set("k", models.FetchResult{URL: "https://example.com/a"})
	if _, ok := c.Get("k", 0); ok {
		t.Error("expected zero TTL to always miss")
	}
}

func TestSet_EvictsAtCapacity(t *testing.T) {
	c := New(2, 0)
	defer c.Close()
	c.Set("a", models.FetchResult{URL: "a"})
	c.Set("b", models.FetchResult{URL: "b"})
	c.Set("c", models.FetchResult{URL: "c"})

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()
	if size != 2 {
		t.Errorf("expected capacity to be enforced at 2, got %d entries", size)
	}
}
