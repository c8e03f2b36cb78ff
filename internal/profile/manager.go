// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package profile

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
	"github.com/medfeed/medfeed/internal/vectormath"
)

// Manager is the mutation surface over preference profiles. It keeps
// an in-memory copy of every loaded profile authoritative for the
// session and serializes mutations per user, so the asynchronous
// keyword merge always applies to the then-current profile rather
// than a stale snapshot.
type Manager struct {
	store      Store
	categories []string
	dimensions int

	mu       sync.Mutex
	profiles map[string]*Profile
	locks    map[string]*sync.Mutex
}

// NewManager creates a profile manager. Nil categories fall back to
// the reference onboarding order; dimensions <= 0 falls back to the
// category count.
func NewManager(store Store, categories []string, dimensions int) *Manager {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if dimensions <= 0 {
		dimensions = len(categories)
	}
	return &Manager{
		store:      store,
		categories: categories,
		dimensions: dimensions,
		profiles:   make(map[string]*Profile),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Load returns a snapshot of the user's profile. Never fails: a store
// miss or store error yields the cold-start default.
func (m *Manager) Load(ctx context.Context, userID string) *Profile {
	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	return m.current(ctx, userID).clone()
}

// RecordRead appends the article to the read history and pulls the
// vector profile halfway toward the article's vector, persisting the
// result. Idempotent: a second read of the same article is a logged
// no-op and returns false. The only error is a vector dimension
// mismatch, which is a catalog data error and propagates.
func (m *Manager) RecordRead(ctx context.Context, userID, articleID string, articleVector []float64) (bool, error) {
	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	p := m.current(ctx, userID)
	if p.HasRead(articleID) {
		logging.Ctx(ctx).Debug().
			Str("user_id", userID).
			Str("article_id", articleID).
			Msg("Article already read, skipping")
		return false, nil
	}

	updated, err := vectormath.Average(p.VectorProfile, articleVector)
	if err != nil {
		return false, err
	}

	p.VectorProfile = updated
	p.ReadHistory = append(p.ReadHistory, articleID)
	m.persist(ctx, p)
	return true, nil
}

// SetInterests recomputes the vector profile from scratch using the
// fixed category-to-dimension mapping: selected categories weigh 0.8,
// everything else 0. Onboarding is a hard reset, not a blend.
func (m *Manager) SetInterests(ctx context.Context, userID string, categories []string) *Profile {
	selected := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		selected[c] = struct{}{}
	}

	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	p := m.current(ctx, userID)

	vec := make([]float64, m.dimensions)
	interests := make(map[string]float64, len(selected))
	for i, category := range m.categories {
		if _, ok := selected[category]; ok {
			if i < len(vec) {
				vec[i] = interestWeight
			}
			interests[category] = interestWeight
		}
	}

	p.VectorProfile = vec
	p.Interests = interests
	m.persist(ctx, p)
	return p.clone()
}

// MergeKeywords lowercases each keyword and increments its count in
// the keyword profile, persisting the result.
func (m *Manager) MergeKeywords(ctx context.Context, userID string, keywords []string) {
	if len(keywords) == 0 {
		return
	}

	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	p := m.current(ctx, userID)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		p.KeywordProfile[kw]++
	}
	m.persist(ctx, p)
}

// current returns the in-memory profile for a user, loading it from
// the store on first access. Must be called with the user lock held.
func (m *Manager) current(ctx context.Context, userID string) *Profile {
	m.mu.Lock()
	p, ok := m.profiles[userID]
	m.mu.Unlock()
	if ok {
		return p
	}

	p, err := m.store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		p = Default(userID, m.dimensions)
	case err != nil:
		metrics.ProfileStoreErrors.WithLabelValues("get").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("Profile load failed, using cold-start default")
		p = Default(userID, m.dimensions)
	default:
		p.normalize(m.dimensions)
	}

	m.mu.Lock()
	// Another goroutine may have loaded concurrently; keep the first.
	if existing, ok := m.profiles[userID]; ok {
		p = existing
	} else {
		m.profiles[userID] = p
	}
	m.mu.Unlock()
	return p
}

// persist writes the full profile snapshot best-effort. A store
// failure is logged and swallowed; the in-memory profile remains
// authoritative and the next successful write supersedes the miss.
func (m *Manager) persist(ctx context.Context, p *Profile) {
	if err := m.store.Put(ctx, p); err != nil {
		metrics.ProfileStoreErrors.WithLabelValues("put").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("user_id", p.UserID).Msg("Profile persist failed, keeping in-memory state")
	}
}

// lockFor returns the per-user mutex, creating it on first use.
func (m *Manager) lockFor(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}
