package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorkerConfig tunes the outbox drain loop.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxBackoff   time.Duration
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
		MaxBackoff:   10 * time.Minute,
	}
}

// Worker drains the webhook_queue outbox. A delivery that fails when the
// event is first published lands in the queue; the worker retries it with
// exponential backoff until it succeeds or runs out of attempts. Multiple
// API nodes can run the worker concurrently: each batch is claimed with
// FOR UPDATE SKIP LOCKED inside a transaction held until the batch's
// status updates commit, so another node polling mid-delivery skips the
// locked rows instead of re-claiming them.
type Worker struct {
	db      PgxPool
	service *Service
	logger  *slog.Logger
	cfg     WorkerConfig
	stopCh  chan struct{}
}

func NewWorker(db PgxPool, service *Service, logger *slog.Logger) *Worker {
	return &Worker{
		db:      db,
		service: service,
		logger:  logger,
		cfg:     DefaultWorkerConfig(),
		stopCh:  make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("webhook worker started",
		"poll_interval", w.cfg.PollInterval,
		"batch_size", w.cfg.BatchSize,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook worker stopped")
			return
		case <-w.stopCh:
			w.logger.Info("webhook worker stopped")
			return
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.Error("webhook queue drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
}

// drain claims one batch of due jobs and attempts delivery for each. The
// claim and the status updates run in the same transaction: its row locks
// stay held until the batch commits. Jobs are collected before any
// delivery starts so the result rows are closed before the transaction is
// reused for updates.
func (w *Worker) drain(ctx context.Context) error {
	query := `
		SELECT id, webhook_id, event_type, payload, attempts, max_attempts
		FROM webhook_queue
		WHERE status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin drain: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query, w.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("claim webhook jobs: %w", err)
	}

	var jobs []WebhookJob
	for rows.Next() {
		var job WebhookJob
		if err := rows.Scan(
			&job.ID, &job.WebhookID, &job.EventType,
			&job.Payload, &job.Attempts, &job.MaxAttempts,
		); err != nil {
			rows.Close()
			return fmt.Errorf("scan webhook job: %w", err)
		}
		jobs = append(jobs, job)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read webhook jobs: %w", err)
	}

	for i := range jobs {
		w.deliver(ctx, tx, &jobs[i])
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit drain: %w", err)
	}
	return nil
}

func (w *Worker) deliver(ctx context.Context, tx pgx.Tx, job *WebhookJob) {
	endpoint, err := w.lookupEndpoint(ctx, tx, job.WebhookID)
	if err != nil {
		w.finish(ctx, tx, job.ID, statusFailed, fmt.Sprintf("webhook lookup: %v", err))
		return
	}
	if !endpoint.Enabled {
		w.finish(ctx, tx, job.ID, statusFailed, "webhook disabled")
		return
	}

	var event EventPayload
	if err := json.Unmarshal(job.Payload, &event); err != nil {
		w.finish(ctx, tx, job.ID, statusFailed, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	if err := w.service.Send(ctx, endpoint, event); err != nil {
		w.retryOrFail(ctx, tx, job, err.Error())
		return
	}

	w.finish(ctx, tx, job.ID, statusDelivered, "")
}

const (
	statusDelivered = "delivered"
	statusFailed    = "failed"
)

func (w *Worker) lookupEndpoint(ctx context.Context, tx pgx.Tx, webhookID uuid.UUID) (*Webhook, error) {
	query := `
		SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at
		FROM webhooks
		WHERE id = $1
	`

	var endpoint Webhook
	var eventsJSON []byte
	err := tx.QueryRow(ctx, query, webhookID).Scan(
		&endpoint.ID, &endpoint.RestaurantID, &endpoint.Name, &endpoint.URL, &endpoint.Secret,
		&eventsJSON, &endpoint.Enabled, &endpoint.LastTriggeredAt,
		&endpoint.CreatedAt, &endpoint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(eventsJSON, &endpoint.Events); err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// retryOrFail backs off exponentially, capped so a stuck endpoint is
// retried at least every MaxBackoff.
func (w *Worker) retryOrFail(ctx context.Context, tx pgx.Tx, job *WebhookJob, errorMsg string) {
	if job.Attempts+1 >= job.MaxAttempts {
		w.finish(ctx, tx, job.ID, statusFailed, errorMsg)
		return
	}

	backoff := time.Duration(1<<job.Attempts) * time.Second
	if backoff > w.cfg.MaxBackoff {
		backoff = w.cfg.MaxBackoff
	}
	nextRetry := time.Now().Add(backoff)

	query := `
		UPDATE webhook_queue
		SET attempts = attempts + 1,
		    next_retry_at = $1,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, query, nextRetry, errorMsg, job.ID); err != nil {
		w.logger.Error("failed to schedule webhook retry", "job_id", job.ID, "error", err)
		return
	}

	w.logger.Debug("webhook delivery rescheduled",
		"job_id", job.ID,
		"attempts", job.Attempts+1,
		"next_retry", nextRetry,
	)
}

func (w *Worker) finish(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, status, errorMsg string) {
	query := `
		UPDATE webhook_queue
		SET status = $1,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, query, status, errorMsg, jobID); err != nil {
		w.logger.Error("failed to update webhook job", "job_id", jobID, "error", err)
		return
	}

	if status == statusFailed {
		w.logger.Warn("webhook delivery failed permanently", "job_id", jobID, "error", errorMsg)
	} else {
		w.logger.Debug("webhook delivered", "job_id", jobID)
	}
}
