// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
)

// DefaultPageSize is the number of articles served per load.
const DefaultPageSize = 15

// ErrArticleNotFound indicates a lookup for an ID not in the catalog.
var ErrArticleNotFound = fmt.Errorf("article not found in catalog")

// Server normalizes and serves the catalog with the freshness policy.
type Server struct {
	source   Source
	vectors  OutletVectors
	pageSize int
}

// NewServer creates a catalog server. A nil vectors table falls back
// to the reference outlet mapping; pageSize <= 0 falls back to
// DefaultPageSize.
func NewServer(source Source, vectors OutletVectors, pageSize int) *Server {
	if vectors == nil {
		vectors = DefaultOutletVectors()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Server{
		source:   source,
		vectors:  vectors,
		pageSize: pageSize,
	}
}

// Load returns the next batch of up to pageSize articles for the given
// session.
//
// Cold load (refresh=false): the served set is cleared, the batch is
// the top of the full catalog ordered by recommendation score when any
// nonzero score exists, else catalog-native order.
//
// Refresh (refresh=true): candidates are the catalog minus the served
// set; when nothing fresh remains the served set wraps around to empty
// and the full catalog becomes the candidate set. Candidates are
// ordered by recommendation score when any nonzero score exists, else
// randomized. Served IDs accumulate across refreshes.
func (s *Server) Load(ctx context.Context, sess *Session, refresh bool) ([]Article, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if !refresh {
		sess.Reset()
		batch := all
		if hasScores(batch) {
			batch = sortByScore(batch)
		}
		batch = take(batch, s.pageSize)
		sess.MarkServed(ids(batch))
		return batch, nil
	}

	fresh := make([]Article, 0, len(all))
	for _, a := range all {
		if !sess.Served(a.ID) {
			fresh = append(fresh, a)
		}
	}

	// Freshness is best-effort: an exhausted catalog wraps around
	// rather than blocking.
	if len(fresh) == 0 {
		logging.Ctx(ctx).Debug().Int("catalog_size", len(all)).Msg("Catalog exhausted, resetting served set")
		metrics.FeedCatalogExhaustions.Inc()
		sess.Reset()
		fresh = all
	}

	if hasScores(fresh) {
		fresh = sortByScore(fresh)
	} else {
		fresh = shuffle(fresh)
	}

	batch := take(fresh, s.pageSize)
	sess.MarkServed(ids(batch))
	return batch, nil
}

// Get returns the catalog article with the given ID.
func (s *Server) Get(ctx context.Context, id string) (Article, error) {
	all, err := s.load(ctx)
	if err != nil {
		return Article{}, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
}

// load fetches the catalog and resolves every article's vector.
func (s *Server) load(ctx context.Context) ([]Article, error) {
	articles, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	for i := range articles {
		articles[i].Vector = s.vectors.Resolve(articles[i].Vector, articles[i].Outlet)
	}
	return articles, nil
}

// hasScores reports whether any article carries a nonzero
// recommendation score.
func hasScores(articles []Article) bool {
	for _, a := range articles {
		if a.RecommendationScore > 0 {
			return true
		}
	}
	return false
}

// sortByScore returns a new slice ordered by recommendation score
// descending, catalog order preserved among ties.
func sortByScore(articles []Article) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecommendationScore > out[j].RecommendationScore
	})
	return out
}

// shuffle returns a new randomly ordered slice.
func shuffle(articles []Article) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func take(articles []Article, n int) []Article {
	if len(articles) <= n {
		return articles
	}
	return articles[:n]
}

func ids(articles []Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}
