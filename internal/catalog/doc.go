// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package catalog loads and serves the article catalog.
//
// A catalog Source provides raw article records; the Server normalizes
// them (assigning per-outlet fallback vectors where no embedding is
// present) and serves paginated batches with a freshness guarantee:
// within a Session, successive refresh loads avoid repeating articles
// already served until the catalog is exhausted, at which point the
// served set wraps around.
package catalog
