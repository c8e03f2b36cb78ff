// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BufferSize: 1000,
	}
}

// Logger writes events asynchronously. Record never blocks the
// caller: when the buffer is full the event is dropped and counted,
// since the trail is advisory and must not slow read handling.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates an audit logger and starts its writer goroutine.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Record enqueues an event for persistence. Missing IDs and
// timestamps are filled in. Returns false if the event was dropped.
func (l *Logger) Record(event *Event) bool {
	if !l.config.Enabled || event == nil {
		return false
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.SelectedAt.IsZero() {
		event.SelectedAt = now
	}
	if event.SavedAt.IsZero() {
		event.SavedAt = now
	}

	select {
	case l.eventChan <- event:
		return true
	default:
		metrics.AuditEventsDropped.Inc()
		logging.Warn().
			Str("user_id", event.UserID).
			Str("article_id", event.ArticleID).
			Msg("Audit buffer full, dropping event")
		return false
	}
}

// Close stops the writer after draining buffered events.
func (l *Logger) Close() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
}

// asyncWriter processes events from the buffer.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent persists an event to the store.
func (l *Logger) writeEvent(event *Event) {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("user_id", event.UserID).Msg("Failed to save audit event")
		return
	}
	metrics.AuditEventsWritten.Inc()
}
