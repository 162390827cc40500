package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/repository"
)

// SessionActivityWorker handles async updates of staff session
// last_active_at with debouncing, and periodically purges sessions that
// have been inactive for longer than the retention period.
type SessionActivityWorker struct {
	sessionRepo repository.StaffSessionRepositoryInterface
	logger      *slog.Logger

	// Channel with buffer to prevent blocking
	updateCh chan uuid.UUID

	// Debounce: track recently bumped sessions
	recentlyUpdated map[uuid.UUID]time.Time
	mu              sync.RWMutex

	// Config
	debounceInterval time.Duration
	batchInterval    time.Duration
	maxBatchSize     int
	cleanupInterval  time.Duration
	retention        time.Duration

	// Lifecycle
	done chan struct{}
	wg   sync.WaitGroup
}

// SessionActivityWorkerConfig holds configuration for the worker
type SessionActivityWorkerConfig struct {
	BufferSize       int           // Channel buffer size (default: 1000)
	DebounceInterval time.Duration // Min interval between bumps for same session (default: 1 minute)
	BatchInterval    time.Duration // Interval to process batch (default: 5 seconds)
	MaxBatchSize     int           // Max sessions per batch (default: 100)
	CleanupInterval  time.Duration // Interval between inactive-session purges (default: 1 hour)
	Retention        time.Duration // Inactivity window before a session is purged (default: 30 days)
}

// DefaultSessionActivityWorkerConfig returns default configuration
func DefaultSessionActivityWorkerConfig() SessionActivityWorkerConfig {
	return SessionActivityWorkerConfig{
		BufferSize:       1000,
		DebounceInterval: 1 * time.Minute,
		BatchInterval:    5 * time.Second,
		MaxBatchSize:     100,
		CleanupInterval:  1 * time.Hour,
		Retention:        30 * 24 * time.Hour,
	}
}

// NewSessionActivityWorker creates a new worker
func NewSessionActivityWorker(
	sessionRepo repository.StaffSessionRepositoryInterface,
	logger *slog.Logger,
	config SessionActivityWorkerConfig,
) *SessionActivityWorker {
	if config.BufferSize == 0 {
		config.BufferSize = 1000
	}
	if config.DebounceInterval == 0 {
		config.DebounceInterval = 1 * time.Minute
	}
	if config.BatchInterval == 0 {
		config.BatchInterval = 5 * time.Second
	}
	if config.MaxBatchSize == 0 {
		config.MaxBatchSize = 100
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 1 * time.Hour
	}
	if config.Retention == 0 {
		config.Retention = 30 * 24 * time.Hour
	}

	return &SessionActivityWorker{
		sessionRepo:      sessionRepo,
		logger:           logger,
		updateCh:         make(chan uuid.UUID, config.BufferSize),
		recentlyUpdated:  make(map[uuid.UUID]time.Time),
		debounceInterval: config.DebounceInterval,
		batchInterval:    config.BatchInterval,
		maxBatchSize:     config.MaxBatchSize,
		cleanupInterval:  config.CleanupInterval,
		retention:        config.Retention,
		done:             make(chan struct{}),
	}
}

// Start begins the background worker
func (w *SessionActivityWorker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("session activity worker started",
		"buffer_size", cap(w.updateCh),
		"debounce_interval", w.debounceInterval,
		"batch_interval", w.batchInterval,
		"retention", w.retention,
	)
}

// Stop gracefully shuts down the worker
func (w *SessionActivityWorker) Stop() {
	close(w.done)
	w.wg.Wait()
	w.logger.Info("session activity worker stopped")
}

// Enqueue adds a session ID for an async last_active bump.
// Non-blocking: if the buffer is full, the bump is dropped.
func (w *SessionActivityWorker) Enqueue(sessionID uuid.UUID) {
	// Check debounce
	w.mu.RLock()
	lastUpdate, exists := w.recentlyUpdated[sessionID]
	w.mu.RUnlock()

	if exists && time.Since(lastUpdate) < w.debounceInterval {
		return // Skip - recently bumped
	}

	// Non-blocking send
	select {
	case w.updateCh <- sessionID:
		// Enqueued
	default:
		// Buffer full - drop bump (it's just activity tracking, not critical)
		w.logger.Debug("activity bump dropped - buffer full", "session_id", sessionID)
	}
}

func (w *SessionActivityWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.batchInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cleanupInterval)
	defer cleanupTicker.Stop()

	// Debounce map maintenance runs on its own cadence
	debounceTicker := time.NewTicker(5 * time.Minute)
	defer debounceTicker.Stop()

	var batch []uuid.UUID

	for {
		select {
		case <-w.done:
			// Process remaining batch before exiting
			if len(batch) > 0 {
				w.processBatch(batch)
			}
			return

		case sessionID := <-w.updateCh:
			batch = append(batch, sessionID)
			if len(batch) >= w.maxBatchSize {
				w.processBatch(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.processBatch(batch)
				batch = nil
			}

		case <-cleanupTicker.C:
			w.purgeInactive()

		case <-debounceTicker.C:
			w.cleanupDebounceMap()
		}
	}
}

func (w *SessionActivityWorker) processBatch(sessionIDs []uuid.UUID) {
	if len(sessionIDs) == 0 {
		return
	}

	// Deduplicate
	seen := make(map[uuid.UUID]struct{})
	unique := make([]uuid.UUID, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var successCount int
	for _, sessionID := range unique {
		if err := w.sessionRepo.UpdateLastActive(ctx, sessionID); err != nil {
			// Revoked sessions surface as not-found; nothing to bump
			w.logger.Debug("failed to bump session activity", "session_id", sessionID, "error", err)
			continue
		}

		// Update debounce map
		w.mu.Lock()
		w.recentlyUpdated[sessionID] = time.Now()
		w.mu.Unlock()

		successCount++
	}

	if successCount > 0 {
		w.logger.Debug("batch activity update", "count", successCount)
	}
}

func (w *SessionActivityWorker) purgeInactive() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-w.retention)
	deleted, err := w.sessionRepo.DeleteInactiveSince(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to purge inactive sessions", "error", err)
		return
	}

	if deleted > 0 {
		w.logger.Info("purged inactive sessions", "count", deleted, "cutoff", cutoff)
	}
}

func (w *SessionActivityWorker) cleanupDebounceMap() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	for sessionID, lastUpdate := range w.recentlyUpdated {
		if now.Sub(lastUpdate) > 2*w.debounceInterval {
			delete(w.recentlyUpdated, sessionID)
		}
	}
}
