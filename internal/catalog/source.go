// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/medfeed/medfeed/internal/logging"
)

// Source is a read-only provider of raw article records.
type Source interface {
	// Load returns the full unordered catalog.
	Load(ctx context.Context) ([]Article, error)
}

// FileSource loads the catalog from a JSON file: an array of article
// records in the catalog's native layout.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and decodes the catalog file. Records without a URL get a
// synthesized "local-<index>" ID so every article has a stable
// identity for history and served-set tracking.
func (s *FileSource) Load(ctx context.Context) ([]Article, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", s.path, err)
	}

	for i := range articles {
		if articles[i].ID == "" {
			if articles[i].URL != "" {
				articles[i].ID = articles[i].URL
			} else {
				articles[i].ID = fmt.Sprintf("local-%d", i)
			}
		}
	}

	return articles, nil
}

// RSSSource loads the catalog from one or more RSS/Atom feeds. Feed
// items carry no embeddings, so every article from this source relies
// on the outlet fallback table (outlet = feed title).
type RSSSource struct {
	urls   []string
	parser *gofeed.Parser
}

// NewRSSSource creates an RSS-backed catalog source.
func NewRSSSource(urls []string) *RSSSource {
	return &RSSSource{
		urls:   urls,
		parser: gofeed.NewParser(),
	}
}

// Load fetches and merges all configured feeds. A feed that fails to
// fetch is logged and skipped; the remaining feeds still serve.
func (s *RSSSource) Load(ctx context.Context) ([]Article, error) {
	var articles []Article
	for _, url := range s.urls {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("feed_url", url).Msg("Failed to fetch feed, skipping")
			continue
		}
		articles = append(articles, articlesFromFeed(feed)...)
	}
	return articles, nil
}

// articlesFromFeed maps feed items onto catalog articles.
func articlesFromFeed(feed *gofeed.Feed) []Article {
	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := Article{
			ID:      item.Link,
			Title:   item.Title,
			Outlet:  feed.Title,
			URL:     item.Link,
			Summary: item.Description,
		}
		if a.ID == "" {
			a.ID = "feed-" + uuid.New().String()
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			a.PublishedDate = item.PublishedParsed.Format("2006-01-02")
		}
		if len(item.Categories) > 0 {
			a.Category = item.Categories[0]
		}
		if item.Image != nil {
			a.ImageURL = item.Image.URL
		}
		articles = append(articles, a)
	}
	return articles
}
