// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package catalog

// Article is one catalog entry. Immutable once loaded; the engine only
// interprets ID, Vector, Outlet and RecommendationScore — the remaining
// fields are display metadata passed through to API clients.
type Article struct {
	// ID is the stable unique identifier: the source URL, or a
	// synthesized fallback when the record carries none.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// OriginalTitle is the untranslated title, when the display title
	// is a translation.
	OriginalTitle string `json:"original_title,omitempty"`

	// Outlet is the publishing outlet, used as the fallback-vector
	// lookup key when no explicit embedding is present.
	Outlet string `json:"press"`

	// Category is the editorial category label.
	Category string `json:"category,omitempty"`

	// Author is the byline, when known.
	Author string `json:"author,omitempty"`

	// URL is the canonical article URL.
	URL string `json:"url,omitempty"`

	// ImageURL is the preview image.
	ImageURL string `json:"image_url,omitempty"`

	// Summary is the abstract or content summary, also used as input
	// to keyword extraction.
	Summary string `json:"content_summary,omitempty"`

	// SummaryBullets are pre-generated highlight bullets.
	SummaryBullets []string `json:"summary_bullets,omitempty"`

	// Keywords are catalog-attached keywords, used as the enrichment
	// fallback when extraction fails.
	Keywords []string `json:"keywords,omitempty"`

	// Vector is the content embedding in the catalog's fixed semantic
	// basis. Assigned from the outlet fallback table when the record
	// carries none.
	Vector []float64 `json:"vector"`

	// RecommendationScore is an optional catalog-supplied score,
	// independent of the engine's runtime similarity scoring.
	RecommendationScore float64 `json:"recommendation_score,omitempty"`

	// PublishedDate is the publication date as carried by the catalog.
	PublishedDate string `json:"published_date,omitempty"`

	// CreatedAt is the catalog ingestion timestamp.
	CreatedAt string `json:"created_at,omitempty"`
}
