package analyzer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheExtractsOnce(t *testing.T) {
	cache := NewExtractionCache(0)
	var calls int32

	for i := 0; i < 3; i++ {
		text, err := cache.Get("digest-1", func() (string, error) {
			atomic.AddInt32(&calls, 1)
			return "extracted", nil
		})
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if text != "extracted" {
			t.Fatalf("Get = %q, want %q", text, "extracted")
		}
	}

	if calls != 1 {
		t.Errorf("extract called %d times, want 1", calls)
	}
}

func TestCacheConcurrentMissesCoalesce(t *testing.T) {
	cache := NewExtractionCache(0)
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Get("digest-1", func() (string, error) {
				atomic.AddInt32(&calls, 1)
				return "extracted", nil
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("extract called %d times under concurrency, want 1", calls)
	}
}

func TestCacheCachesEmptyResult(t *testing.T) {
	cache := NewExtractionCache(0)
	var calls int32

	for i := 0; i < 2; i++ {
		if _, err := cache.Get("digest-1", func() (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", nil
		}); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("extract called %d times for empty result, want 1", calls)
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewExtractionCache(0)
	var calls int32

	_, err := cache.Get("digest-1", func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("transient read failure")
	})
	if err == nil {
		t.Fatal("Get swallowed extraction error")
	}

	text, err := cache.Get("digest-1", func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Get returned error after recovery: %v", err)
	}
	if text != "recovered" {
		t.Errorf("Get = %q, want %q", text, "recovered")
	}
	if calls != 2 {
		t.Errorf("extract called %d times, want 2", calls)
	}
}

func TestCacheEviction(t *testing.T) {
	cache := NewExtractionCache(2)

	cache.Get("a", func() (string, error) { return "1", nil })
	cache.Get("b", func() (string, error) { return "2", nil })
	cache.Get("c", func() (string, error) { return "3", nil })

	if got := cache.Len(); got != 2 {
		t.Errorf("Len = %d after overflow, want 2", got)
	}
}
