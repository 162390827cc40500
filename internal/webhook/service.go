package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/comandero-software/comandero/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the webhook layer uses. pgxmock
// implements it for tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db     PgxPool
	client *http.Client
}

func NewService(db PgxPool) *Service {
	return &Service{
		db: db,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send performs one delivery attempt against the endpoint: signed POST,
// 2xx/3xx counts as delivered. It does no queueing of its own, so callers
// decide whether a failure is retried (Dispatch enqueues, the worker backs
// off).
func (s *Service) Send(ctx context.Context, endpoint *Webhook, event EventPayload) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Comandero-Signature", Sign(endpoint.Secret, payload))
	req.Header.Set("X-Comandero-Event", event.Type)
	req.Header.Set("User-Agent", "Comandero-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("deliver webhook: HTTP %d", resp.StatusCode)
	}

	return s.updateLastTriggered(ctx, endpoint.ID)
}

// Dispatch fans an event out to every enabled webhook of the restaurant
// that subscribes to the event type. A failed delivery lands in the retry
// queue instead of failing the dispatch; Dispatch itself only errors on
// lookup or queueing problems.
func (s *Service) Dispatch(ctx context.Context, restaurantID uuid.UUID, eventType string, data interface{}) error {
	endpoints, err := s.GetWebhooksByEvent(ctx, restaurantID, eventType)
	if err != nil {
		return err
	}

	event := EventPayload{
		Type:         eventType,
		Data:         data,
		RestaurantID: restaurantID,
		Timestamp:    time.Now().UTC(),
	}

	for _, endpoint := range endpoints {
		if sendErr := s.Send(ctx, endpoint, event); sendErr != nil {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("marshal event: %w", err)
			}
			if err := s.enqueue(ctx, endpoint.ID, event.Type, payload, sendErr.Error()); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Service) enqueue(ctx context.Context, webhookID uuid.UUID, eventType string, payload []byte, errorMsg string) error {
	query := `
		INSERT INTO webhook_queue (webhook_id, event_type, payload, next_retry_at, last_error)
		VALUES ($1, $2, $3, NOW() + INTERVAL '1 second', $4)
	`

	_, err := s.db.Exec(ctx, query, webhookID, eventType, payload, errorMsg)
	if err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}

	return nil
}

func (s *Service) updateLastTriggered(ctx context.Context, webhookID uuid.UUID) error {
	query := `UPDATE webhooks SET last_triggered_at = NOW() WHERE id = $1`
	_, err := s.db.Exec(ctx, query, webhookID)
	return err
}

func (s *Service) GetWebhooksByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Webhook, error) {
	query := `
		SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at
		FROM webhooks
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query webhooks: %w", err)
	}
	defer rows.Close()

	return scanWebhooks(rows)
}

func (s *Service) GetWebhooksByEvent(ctx context.Context, restaurantID uuid.UUID, eventType string) ([]*Webhook, error) {
	query := `
		SELECT id, restaurant_id, name, url, secret, events, enabled, last_triggered_at, created_at, updated_at
		FROM webhooks
		WHERE restaurant_id = $1 AND enabled = true AND events @> $2::jsonb
	`

	eventsJSON, _ := json.Marshal([]string{eventType})

	rows, err := s.db.Query(ctx, query, restaurantID, eventsJSON)
	if err != nil {
		return nil, fmt.Errorf("query webhooks by event: %w", err)
	}
	defer rows.Close()

	return scanWebhooks(rows)
}

func scanWebhooks(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]*Webhook, error) {
	var webhooks []*Webhook
	for rows.Next() {
		var w Webhook
		var eventsJSON []byte

		err := rows.Scan(
			&w.ID, &w.RestaurantID, &w.Name, &w.URL, &w.Secret,
			&eventsJSON, &w.Enabled, &w.LastTriggeredAt,
			&w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}

		if err := json.Unmarshal(eventsJSON, &w.Events); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}

		webhooks = append(webhooks, &w)
	}

	return webhooks, nil
}

func (s *Service) CreateWebhook(ctx context.Context, webhook *Webhook) error {
	eventsJSON, err := json.Marshal(webhook.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	query := `
		INSERT INTO webhooks (restaurant_id, name, url, secret, events, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		webhook.RestaurantID, webhook.Name, webhook.URL,
		webhook.Secret, eventsJSON, webhook.Enabled,
	).Scan(&webhook.ID, &webhook.CreatedAt, &webhook.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	return nil
}

func (s *Service) DeleteWebhook(ctx context.Context, restaurantID, webhookID uuid.UUID) error {
	query := `DELETE FROM webhooks WHERE id = $1 AND restaurant_id = $2`

	result, err := s.db.Exec(ctx, query, webhookID, restaurantID)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrWebhookNotFound
	}

	return nil
}
