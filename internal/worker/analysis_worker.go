package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/models"
	"github.com/campusworks/integrity-service/internal/service"
	"github.com/campusworks/integrity-service/internal/service/analyzer"
	"github.com/campusworks/integrity-service/internal/worker/queue"
)

type AnalysisWorker interface {
	Start(ctx context.Context) error
	Stop() error
	Stats() WorkerStats
}

type WorkerStats struct {
	ActiveWorkers  int `json:"active_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type analysisWorker struct {
	pool             *Pool
	consumer         queue.RabbitMQConsumer
	integrityService service.IntegrityService
	logger           zerolog.Logger

	statsMu        sync.RWMutex
	totalProcessed int
	failedJobs     int
	startTime      time.Time
}

func NewAnalysisWorker(
	pool *Pool,
	consumer queue.RabbitMQConsumer,
	integrityService service.IntegrityService,
	logger zerolog.Logger,
) AnalysisWorker {
	return &analysisWorker{
		pool:             pool,
		consumer:         consumer,
		integrityService: integrityService,
		logger:           logger,
		startTime:        time.Now(),
	}
}

func (w *analysisWorker) Start(ctx context.Context) error {
	w.pool.Start(ctx)

	msgs, err := w.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Analysis worker started")
	return nil
}

func (w *analysisWorker) Stop() error {
	w.pool.Stop()

	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	w.statsMu.RLock()
	processed, failed := w.totalProcessed, w.failedJobs
	w.statsMu.RUnlock()

	w.logger.Info().
		Int("total_processed", processed).
		Int("failed_jobs", failed).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Analysis worker stopped")

	return nil
}

func (w *analysisWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			w.pool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Msg("Failed to process message")

					w.statsMu.Lock()
					w.failedJobs++
					w.statsMu.Unlock()

					// Permanent failures are acked so the queue does not
					// redeliver a message that can never succeed.
					if isPermanentError(err) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}

				w.statsMu.Lock()
				w.totalProcessed++
				w.statsMu.Unlock()
			})
		}
	}
}

func (w *analysisWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	var event models.SubmissionReceivedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed submission event: %w", err)
	}

	if event.SubmissionID == "" {
		return fmt.Errorf("submission event without submission id: %w", analyzer.ErrInvalidInput)
	}

	w.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("partition_key", event.PartitionKey).
		Msg("Processing queued submission")

	_, err := w.integrityService.Analyze(ctx, event.SubmissionID)
	return err
}

func (w *analysisWorker) Stats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return WorkerStats{
		ActiveWorkers:  w.pool.ActiveWorkers(),
		TotalProcessed: w.totalProcessed,
		FailedJobs:     w.failedJobs,
		QueueLength:    w.pool.QueueLength(),
	}
}

// isPermanentError reports whether reprocessing could ever succeed. Malformed
// events and missing records stay broken no matter how many times they are
// redelivered.
func isPermanentError(err error) bool {
	if errors.Is(err, service.ErrSubmissionNotFound) ||
		errors.Is(err, analyzer.ErrInvalidInput) {
		return true
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
