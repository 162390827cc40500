package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const claimPattern = `SELECT id, webhook_id, event_type, payload, attempts, max_attempts FROM webhook_queue WHERE status = 'pending' AND \(next_retry_at IS NULL OR next_retry_at <= NOW\(\)\) ORDER BY created_at ASC FOR UPDATE SKIP LOCKED LIMIT \$1`

func queuedJobRows(jobID, webhookID uuid.UUID, payload []byte, attempts, maxAttempts int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "webhook_id", "event_type", "payload", "attempts", "max_attempts"}).
		AddRow(jobID, webhookID, "order:update", payload, attempts, maxAttempts)
}

func endpointRows(webhookID, restaurantID uuid.UUID, url string, enabled bool) *pgxmock.Rows {
	now := time.Now()
	events, _ := json.Marshal([]string{"order:update"})
	return pgxmock.NewRows([]string{
		"id", "restaurant_id", "name", "url", "secret", "events",
		"enabled", "last_triggered_at", "created_at", "updated_at",
	}).AddRow(webhookID, restaurantID, "kitchen", url, "s3cret", events, enabled, nil, now, now)
}

func TestWorker_DrainDeliversAndCommitsInOneTransaction(t *testing.T) {
	var delivered atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jobID := uuid.New()
	webhookID := uuid.New()
	restaurantID := uuid.New()
	payload, err := json.Marshal(EventPayload{Type: "order:update", RestaurantID: restaurantID, Timestamp: time.Now().UTC()})
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// The row locks from the claim must survive until the status update
	// commits, so the whole batch runs inside one transaction.
	mock.ExpectBegin()
	mock.ExpectQuery(claimPattern).
		WithArgs(10).
		WillReturnRows(queuedJobRows(jobID, webhookID, payload, 0, 5))
	mock.ExpectQuery(`SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at FROM webhooks WHERE id = \$1`).
		WithArgs(webhookID).
		WillReturnRows(endpointRows(webhookID, restaurantID, server.URL, true))
	mock.ExpectExec(`UPDATE webhooks SET last_triggered_at = NOW\(\) WHERE id = \$1`).
		WithArgs(webhookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE webhook_queue SET status = \$1, last_error = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs(statusDelivered, "", jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	worker := NewWorker(mock, NewService(mock), testWorkerLogger())
	require.NoError(t, worker.drain(context.Background()))

	assert.Equal(t, int32(1), delivered.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_DrainReschedulesFailedDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	jobID := uuid.New()
	webhookID := uuid.New()
	restaurantID := uuid.New()
	payload, err := json.Marshal(EventPayload{Type: "order:update", RestaurantID: restaurantID, Timestamp: time.Now().UTC()})
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(claimPattern).
		WithArgs(10).
		WillReturnRows(queuedJobRows(jobID, webhookID, payload, 1, 5))
	mock.ExpectQuery(`SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at FROM webhooks WHERE id = \$1`).
		WithArgs(webhookID).
		WillReturnRows(endpointRows(webhookID, restaurantID, server.URL, true))
	mock.ExpectExec(`UPDATE webhook_queue SET attempts = attempts \+ 1, next_retry_at = \$1, last_error = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs(pgxmock.AnyArg(), "deliver webhook: HTTP 502", jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	worker := NewWorker(mock, NewService(mock), testWorkerLogger())
	require.NoError(t, worker.drain(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_DrainFailsJobForDisabledEndpoint(t *testing.T) {
	jobID := uuid.New()
	webhookID := uuid.New()
	restaurantID := uuid.New()
	payload, err := json.Marshal(EventPayload{Type: "order:update", RestaurantID: restaurantID, Timestamp: time.Now().UTC()})
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(claimPattern).
		WithArgs(10).
		WillReturnRows(queuedJobRows(jobID, webhookID, payload, 0, 5))
	mock.ExpectQuery(`SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at FROM webhooks WHERE id = \$1`).
		WithArgs(webhookID).
		WillReturnRows(endpointRows(webhookID, restaurantID, "http://unused.test", false))
	mock.ExpectExec(`UPDATE webhook_queue SET status = \$1, last_error = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs(statusFailed, "webhook disabled", jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	worker := NewWorker(mock, NewService(mock), testWorkerLogger())
	require.NoError(t, worker.drain(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_DrainEmptyQueueCommitsCleanly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(claimPattern).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "webhook_id", "event_type", "payload", "attempts", "max_attempts"}))
	mock.ExpectCommit()

	worker := NewWorker(mock, NewService(mock), testWorkerLogger())
	require.NoError(t, worker.drain(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
