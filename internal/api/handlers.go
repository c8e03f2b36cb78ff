// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/medfeed/medfeed/internal/audit"
	"github.com/medfeed/medfeed/internal/catalog"
	"github.com/medfeed/medfeed/internal/engagement"
	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
	"github.com/medfeed/medfeed/internal/profile"
	"github.com/medfeed/medfeed/internal/recommend"
)

// Handler holds the service dependencies for all HTTP endpoints.
type Handler struct {
	catalog    *catalog.Server
	sessions   *catalog.SessionRegistry
	profiles   *profile.Manager
	tracker    *engagement.Tracker
	auditStore audit.Store
	startTime  time.Time
}

// NewHandler creates the endpoint handler. auditStore may be nil, in
// which case the saved-articles listing is unavailable.
func NewHandler(cat *catalog.Server, sessions *catalog.SessionRegistry, profiles *profile.Manager, tracker *engagement.Tracker, auditStore audit.Store) *Handler {
	return &Handler{
		catalog:    cat,
		sessions:   sessions,
		profiles:   profiles,
		tracker:    tracker,
		auditStore: auditStore,
		startTime:  time.Now(),
	}
}

// FeedResponse is the payload for GET /feed.
type FeedResponse struct {
	Articles []catalog.Article `json:"articles"`
	Count    int               `json:"count"`
	View     string            `json:"view"`
	Refresh  bool              `json:"refresh"`
}

// Feed serves a page of articles for a user.
//
// GET /api/v1/feed?user_id=u1&refresh=true&view=recommended
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := FeedRequest{
		UserID:  r.URL.Query().Get("user_id"),
		Refresh: r.URL.Query().Get("refresh") == "true",
		View:    r.URL.Query().Get("view"),
	}
	if err := validateRequest(&req); err != nil {
		rw.ValidationFailed("invalid feed request", err.Error())
		return
	}
	if req.View == "" {
		req.View = "latest"
	}

	sess := h.sessions.Get(req.UserID)
	articles, err := h.catalog.Load(r.Context(), sess, req.Refresh)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog load failed")
		rw.ServiceUnavailable("article catalog unavailable")
		return
	}

	if req.View == "recommended" {
		p := h.profiles.Load(r.Context(), req.UserID)
		ranked, err := recommend.Rank(p.VectorProfile, articles)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Ranking failed")
			rw.InternalError("failed to rank articles")
			return
		}
		articles = recommend.Articles(ranked)
	}

	mode := "cold"
	if req.Refresh {
		mode = "refresh"
	}
	metrics.FeedRequests.WithLabelValues(mode).Inc()

	rw.Success(FeedResponse{
		Articles: articles,
		Count:    len(articles),
		View:     req.View,
		Refresh:  req.Refresh,
	})
}

// GetProfile returns the user's preference profile.
//
// GET /api/v1/users/{userID}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	p := h.profiles.Load(r.Context(), userID)
	rw.Success(p)
}

// RecordReadResponse is the payload for POST /users/{userID}/reads.
type RecordReadResponse struct {
	ArticleID string `json:"article_id"`
	Recorded  bool   `json:"recorded"`
	Duplicate bool   `json:"duplicate"`
}

// RecordRead records that a user read an article. A first read
// answers 202 while enrichment continues in the background; a repeat
// read answers 200 without side effects.
//
// POST /api/v1/users/{userID}/reads
func (h *Handler) RecordRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	var req RecordReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := validateRequest(&req); err != nil {
		rw.ValidationFailed("invalid read event", err.Error())
		return
	}
	source := audit.SourceClick
	if req.Source == string(audit.SourceLike) {
		source = audit.SourceLike
	}

	article, err := h.catalog.Get(r.Context(), req.ArticleID)
	if err != nil {
		if errors.Is(err, catalog.ErrArticleNotFound) {
			rw.NotFound("unknown article id")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog lookup failed")
		rw.ServiceUnavailable("article catalog unavailable")
		return
	}

	recorded, err := h.tracker.OnArticleRead(r.Context(), userID, article, source)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("article_id", article.ID).
			Msg("Read event rejected")
		rw.InternalError("failed to record read")
		return
	}

	resp := RecordReadResponse{
		ArticleID: article.ID,
		Recorded:  recorded,
		Duplicate: !recorded,
	}
	if recorded {
		rw.Accepted(resp)
		return
	}
	rw.Success(resp)
}

// UpdateInterests replaces the user's onboarding interests and
// recomputes the preference vector from them.
//
// PUT /api/v1/users/{userID}/interests
func (h *Handler) UpdateInterests(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	var req UpdateInterestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := validateRequest(&req); err != nil {
		rw.ValidationFailed("invalid interests", err.Error())
		return
	}

	p := h.profiles.SetInterests(r.Context(), userID, req.Categories)
	rw.Success(p)
}

// SavedList returns the user's audit trail of read articles, newest first.
//
// GET /api/v1/users/{userID}/saved?limit=50
func (h *Handler) SavedList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.auditStore == nil {
		rw.ServiceUnavailable("audit trail disabled")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("limit must be an integer")
			return
		}
		limit = parsed
	}
	req := SavedListRequest{Limit: limit}
	if err := validateRequest(&req); err != nil {
		rw.ValidationFailed("invalid limit", err.Error())
		return
	}

	events, err := h.auditStore.ListByUser(r.Context(), userID, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Audit list failed")
		rw.InternalError("failed to list saved articles")
		return
	}

	rw.Success(map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// HealthStatus is the payload for the health endpoints.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Health reports overall service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{Status: "alive"})
}

// HealthReady is the readiness probe. The service is ready once the
// catalog source answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if _, err := h.catalog.Load(r.Context(), catalog.NewSession(), false); err != nil {
		rw.ServiceUnavailable("catalog source not ready")
		return
	}
	rw.Success(HealthStatus{
		Status:        "ready",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
