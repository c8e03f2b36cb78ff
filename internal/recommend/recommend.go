// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package recommend scores articles against a user's preference
// vector and orders them by similarity.
package recommend

import (
	"sort"
	"time"

	"github.com/medfeed/medfeed/internal/catalog"
	"github.com/medfeed/medfeed/internal/metrics"
	"github.com/medfeed/medfeed/internal/vectormath"
)

// Scored pairs an article with its similarity to the profile vector.
type Scored struct {
	Article catalog.Article
	Score   float64
}

// Rank scores every article by cosine similarity to the profile
// vector and returns a new slice ordered by descending score. Ties
// keep their input order. The inputs are never mutated; the returned
// articles carry the computed score in RecommendationScore.
func Rank(profileVector []float64, articles []catalog.Article) ([]Scored, error) {
	start := time.Now()

	scored := make([]Scored, 0, len(articles))
	for _, a := range articles {
		score, err := vectormath.CosineSimilarity(profileVector, a.Vector)
		if err != nil {
			return nil, err
		}
		a.RecommendationScore = score
		scored = append(scored, Scored{Article: a, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	metrics.RecordRanking(len(articles), time.Since(start))
	return scored, nil
}

// Articles unwraps a ranked slice back to plain articles, preserving
// order and scores.
func Articles(scored []Scored) []catalog.Article {
	out := make([]catalog.Article, len(scored))
	for i, s := range scored {
		out[i] = s.Article
	}
	return out
}
