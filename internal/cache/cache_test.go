package cache_test

import (
	"testing"
	"time"

	"github.com/mmutuku/campushub/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("k", 42)

	v, ok := c.Get("k")

	if !ok {
		t.Fatal("expected hit")
	}

	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(10 * time.Millisecond)

	c.Set("k", "v")

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestCacheClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Error("clear should drop all entries")
	}
}
