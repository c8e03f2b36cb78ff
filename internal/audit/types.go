// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package audit records engagement events for offline analysis. It
// keeps a durable trail of which articles each user saved or read,
// with enough article metadata to survive catalog churn.
package audit

import (
	"context"
	"time"
)

// Source tags how an article entered the trail.
type Source string

const (
	SourceClick Source = "click"
	SourceLike  Source = "like"
)

// Event is one saved-article record. Article metadata is denormalized
// so the trail stays readable after the catalog rotates.
type Event struct {
	ID            string    `json:"id"`
	UserID        string    `json:"uid"`
	ArticleID     string    `json:"article_id"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Category      string    `json:"category,omitempty"`
	Outlet        string    `json:"press,omitempty"`
	Abstract      string    `json:"content_summary,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
	Vector        []float64 `json:"vector,omitempty"`
	Source        Source    `json:"source"`
	SelectedAt    time.Time `json:"selected_at"`
	SavedAt       time.Time `json:"saved_at"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Event, error)
}
