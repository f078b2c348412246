package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestPoolRunsTasks(t *testing.T) {
	pool := NewPool(4, zerolog.Nop())
	pool.Start(context.Background())

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
		})
	}

	wg.Wait()
	pool.Stop()

	if done != 20 {
		t.Errorf("ran %d tasks, want 20", done)
	}
}

func TestPoolSurvivesPanic(t *testing.T) {
	pool := NewPool(1, zerolog.Nop())
	pool.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)

	pool.Submit(func() {
		defer wg.Done()
		panic("task exploded")
	})

	var ran bool
	pool.Submit(func() {
		defer wg.Done()
		ran = true
	})

	wg.Wait()
	pool.Stop()

	if !ran {
		t.Error("task after panic did not run")
	}
}

func TestPoolStopWaitsForTasks(t *testing.T) {
	pool := NewPool(2, zerolog.Nop())
	pool.Start(context.Background())

	var done int32
	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			atomic.AddInt32(&done, 1)
		})
	}

	pool.Stop()

	if done != 5 {
		t.Errorf("Stop returned with %d of 5 tasks done", done)
	}
}
