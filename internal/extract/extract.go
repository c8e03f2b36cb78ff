// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package extract derives topical keywords from article text via an
// upstream language model API. Extraction is best-effort: callers
// treat any failure as "no keywords" and fall back to catalog
// metadata.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/medfeed/medfeed/internal/logging"
	"github.com/medfeed/medfeed/internal/metrics"
)

// MaxKeywords caps how many keywords one extraction may yield.
const MaxKeywords = 5

// ErrNoKeywords indicates the upstream answered but produced no
// usable keyword list.
var ErrNoKeywords = errors.New("extract: no keywords in response")

// Extractor produces keywords for an article title and abstract.
type Extractor interface {
	Extract(ctx context.Context, title, abstract string) ([]string, error)
}

// Config holds the upstream API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls a generateContent-style endpoint and parses the JSON
// keyword array out of the model's reply. All calls run through a
// circuit breaker so a degraded upstream cannot stall read handling.
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker[[]string]
	name string
}

// NewClient creates an extraction client. The circuit breaker opens
// after a 60% failure rate over at least 10 requests and probes
// recovery after 2 minutes.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	cbName := "keyword-extractor"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:   cb,
		name: cbName,
	}
}

// request/response shapes for the generateContent endpoint.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// jsonArrayPattern pulls the keyword array out of the reply, which
// may be wrapped in markdown code fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Extract requests keywords for the given title and abstract. The
// result is lowercase and capped at MaxKeywords entries.
func (c *Client) Extract(ctx context.Context, title, abstract string) ([]string, error) {
	start := time.Now()

	keywords, err := c.cb.Execute(func() ([]string, error) {
		return c.extract(ctx, title, abstract)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordExtraction("rejected", time.Since(start))
		logging.Ctx(ctx).Warn().Err(err).Msg("[CIRCUIT BREAKER] Extraction rejected")
		return nil, err
	case errors.Is(err, ErrNoKeywords):
		metrics.RecordExtraction("empty", time.Since(start))
		return nil, err
	case err != nil:
		metrics.RecordExtraction("failure", time.Since(start))
		return nil, err
	}

	metrics.RecordExtraction("success", time.Since(start))
	return keywords, nil
}

func (c *Client) extract(ctx context.Context, title, abstract string) ([]string, error) {
	prompt := buildPrompt(title, abstract)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 200,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parseKeywords(parsed)
}

func buildPrompt(title, abstract string) string {
	return fmt.Sprintf(`You are a medical research keyword extractor. Given the following article title and abstract, extract exactly 5 core keywords that best represent the research topic and would be useful for recommending similar articles.

Title: %s
Abstract: %s

Rules:
- Return ONLY a JSON array of 5 strings, e.g. ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5"]
- Keywords should be in English, lowercase
- Keywords should be specific research terms, not generic words
- No explanation, just the JSON array`, title, abstract)
}

// parseKeywords extracts the keyword array from the first candidate's
// text, tolerating markdown fences around the JSON.
func parseKeywords(resp generateResponse) ([]string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoKeywords
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, ErrNoKeywords
	}

	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON array in %q", ErrNoKeywords, text)
	}

	var keywords []string
	if err := json.Unmarshal([]byte(match), &keywords); err != nil {
		return nil, fmt.Errorf("parse keyword array: %w", err)
	}

	out := make([]string, 0, MaxKeywords)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrNoKeywords
	}
	return out, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
