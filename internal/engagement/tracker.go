// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package engagement handles read events: the synchronous profile
// update, the asynchronous keyword enrichment, and the audit trail.
package engagement

import (
	"context"
	"time"

	"github.com/medfeed/medfeed/internal/audit"
	"github.com/medfeed/medfeed/internal/catalog"
	"github.com/medfeed/medfeed/internal/extract"
	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
	"github.com/medfeed/medfeed/internal/profile"
)

// Tracker processes article read events. The vector update is
// synchronous so the next feed request sees it; keyword enrichment
// and the audit write run in the background and may fail silently.
type Tracker struct {
	profiles  *profile.Manager
	extractor extract.Extractor
	audit     *audit.Logger
	timeout   time.Duration
}

// NewTracker creates a tracker. extractor and auditLogger may be nil;
// the corresponding step is skipped.
func NewTracker(profiles *profile.Manager, extractor extract.Extractor, auditLogger *audit.Logger, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Tracker{
		profiles:  profiles,
		extractor: extractor,
		audit:     auditLogger,
		timeout:   timeout,
	}
}

// OnArticleRead records a read. Returns whether the read was new. A
// duplicate read is a success that triggers no enrichment and no
// audit entry. The only error is a vector dimension mismatch.
func (t *Tracker) OnArticleRead(ctx context.Context, userID string, article catalog.Article, source audit.Source) (bool, error) {
	recorded, err := t.profiles.RecordRead(ctx, userID, article.ID, article.Vector)
	if err != nil {
		return false, err
	}
	if !recorded {
		metrics.ReadsRecorded.WithLabelValues("duplicate").Inc()
		return false, nil
	}
	metrics.ReadsRecorded.WithLabelValues("recorded").Inc()

	requestID := logging.RequestIDFromContext(ctx)
	go t.enrich(requestID, userID, article, source)
	return true, nil
}

// enrich runs off the request path on a detached context so client
// disconnects cannot cancel it. Extraction failures fall back to the
// article's catalog keywords; having no keywords at all is fine.
func (t *Tracker) enrich(requestID, userID string, article catalog.Article, source audit.Source) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if requestID != "" {
		ctx = logging.ContextWithRequestID(ctx, requestID)
	}

	keywords := t.extractKeywords(ctx, article)
	if len(keywords) > 0 {
		t.profiles.MergeKeywords(ctx, userID, keywords)
	}

	if t.audit != nil {
		t.audit.Record(&audit.Event{
			UserID:        userID,
			ArticleID:     article.ID,
			Title:         article.Title,
			OriginalTitle: article.OriginalTitle,
			Category:      article.Category,
			Outlet:        article.Outlet,
			Abstract:      article.Summary,
			Keywords:      keywords,
			Vector:        article.Vector,
			Source:        source,
		})
	}
}

func (t *Tracker) extractKeywords(ctx context.Context, article catalog.Article) []string {
	if t.extractor == nil {
		return article.Keywords
	}

	keywords, err := t.extractor.Extract(ctx, article.Title, article.Summary)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("article_id", article.ID).
			Msg("Keyword extraction failed, falling back to catalog keywords")
		return article.Keywords
	}
	return keywords
}
