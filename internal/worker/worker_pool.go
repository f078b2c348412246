package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Task func()

// Pool runs queued analysis tasks over a fixed worker count. A panicking
// task takes down only itself, never the worker.
type Pool struct {
	tasks      chan Task
	wg         sync.WaitGroup
	busy       int
	maxWorkers int
	logger     zerolog.Logger
	mu         sync.RWMutex
}

func NewPool(maxWorkers int, logger zerolog.Logger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Pool{
		tasks:      make(chan Task, maxWorkers*10),
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info().Int("max_workers", p.maxWorkers).Msg("Worker pool started")
}

// Stop drains the queue and waits for in-flight tasks to finish. Submit must
// not be called after Stop.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

func (p *Pool) Submit(task Task) {
	select {
	case p.tasks <- task:
	default:
		p.logger.Warn().Msg("Worker pool task queue is full")
		select {
		case p.tasks <- task:
		case <-time.After(1 * time.Second):
			p.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug().Int("worker_id", id).Msg("Worker started")

	for task := range p.tasks {
		p.mu.Lock()
		p.busy++
		p.mu.Unlock()

		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error().
						Int("worker_id", id).
						Interface("panic", r).
						Msg("Worker recovered from panic")
				}

				p.mu.Lock()
				p.busy--
				p.mu.Unlock()
			}()

			task()
		}()
	}

	p.logger.Debug().Int("worker_id", id).Msg("Worker stopped")
}

// ActiveWorkers returns the number of workers currently executing a task.
func (p *Pool) ActiveWorkers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.busy
}

func (p *Pool) QueueLength() int {
	return len(p.tasks)
}
