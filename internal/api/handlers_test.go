// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/medfeed/medfeed/internal/audit"
	"github.com/medfeed/medfeed/internal/catalog"
	"github.com/medfeed/medfeed/internal/engagement"
	"github.com/medfeed/medfeed/internal/profile"
)

// staticSource serves a fixed catalog.
type staticSource struct {
	articles []catalog.Article
}

func (s *staticSource) Load(ctx context.Context) ([]catalog.Article, error) {
	out := make([]catalog.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

type failingSource struct{}

func (failingSource) Load(ctx context.Context) ([]catalog.Article, error) {
	return nil, fmt.Errorf("source offline")
}

func fixtureArticles(n int) []catalog.Article {
	articles := make([]catalog.Article, n)
	for i := range articles {
		articles[i] = catalog.Article{
			ID:       fmt.Sprintf("a%d", i),
			Title:    fmt.Sprintf("Article %d", i),
			Outlet:   "Nature",
			Category: "IT/과학",
			Summary:  "abstract",
			Keywords: []string{"genomics"},
			Vector:   []float64{0.1 * float64(i%10), 0.5, 0.2, 0.1, 0.1},
		}
	}
	return articles
}

type testEnv struct {
	server     *httptest.Server
	profiles   *profile.Manager
	auditStore *audit.MemoryStore
	logger     *audit.Logger
}

func newTestEnv(t *testing.T, source catalog.Source, pageSize int) *testEnv {
	t.Helper()

	cat := catalog.NewServer(source, nil, pageSize)
	sessions := catalog.NewSessionRegistry()
	profiles := profile.NewManager(profile.NewMemoryStore(), nil, 5)
	auditStore := audit.NewMemoryStore(1000)
	logger := audit.NewLogger(auditStore, &audit.Config{Enabled: true, BufferSize: 100})
	tracker := engagement.NewTracker(profiles, nil, logger, 2*time.Second)

	handler := NewHandler(cat, sessions, profiles, tracker, auditStore)
	router := NewRouter(handler, NewMiddleware(&MiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
	}))

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	t.Cleanup(logger.Close)

	return &testEnv{server: srv, profiles: profiles, auditStore: auditStore, logger: logger}
}

func decodeResponse(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func dataField(t *testing.T, body APIResponse, key string) interface{} {
	t.Helper()
	data, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", body.Data)
	}
	return data[key]
}

func TestFeedRequiresUserID(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(20)}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/feed")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	body := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want %s", body.Error, ErrCodeValidationFailed)
	}
}

func TestFeedRejectsUnknownView(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(20)}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1&view=trending")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	decodeResponse(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFeedServesPage(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(20)}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	body := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if count := dataField(t, body, "count").(float64); count != 15 {
		t.Errorf("count = %v, want 15", count)
	}
	if view := dataField(t, body, "view").(string); view != "latest" {
		t.Errorf("view = %q, want latest", view)
	}
	if body.Meta == nil || body.Meta.RequestID == "" {
		t.Error("meta request id missing")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestFeedRefreshAvoidsServedArticles(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(20)}, 15)

	first, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1")
	if err != nil {
		t.Fatalf("first GET: %v", err)
	}
	firstBody := decodeResponse(t, first)

	second, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1&refresh=true")
	if err != nil {
		t.Fatalf("second GET: %v", err)
	}
	secondBody := decodeResponse(t, second)

	seen := map[string]bool{}
	for _, raw := range dataField(t, firstBody, "articles").([]interface{}) {
		seen[raw.(map[string]interface{})["id"].(string)] = true
	}
	fresh := dataField(t, secondBody, "articles").([]interface{})
	if len(fresh) != 5 {
		t.Fatalf("refresh served %d articles, want the 5 remaining", len(fresh))
	}
	for _, raw := range fresh {
		id := raw.(map[string]interface{})["id"].(string)
		if seen[id] {
			t.Errorf("refresh repeated already-served article %s", id)
		}
	}
}

func TestFeedRecommendedOrdersBySimilarity(t *testing.T) {
	articles := []catalog.Article{
		{ID: "far", Outlet: "Nature", Vector: []float64{0, 0, 0, 0, 1}},
		{ID: "near", Outlet: "Nature", Vector: []float64{1, 0, 0, 0, 0}},
	}
	env := newTestEnv(t, &staticSource{articles: articles}, 15)

	// Focus the profile on the first dimension.
	body := bytes.NewBufferString(`{"categories": ["정치"]}`)
	req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/v1/users/u1/interests", body)
	req.Header.Set("Content-Type", "application/json")
	if resp, err := http.DefaultClient.Do(req); err != nil {
		t.Fatalf("PUT /interests: %v", err)
	} else {
		decodeResponse(t, resp)
	}

	resp, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1&view=recommended")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	respBody := decodeResponse(t, resp)

	got := dataField(t, respBody, "articles").([]interface{})
	firstID := got[0].(map[string]interface{})["id"].(string)
	if firstID != "near" {
		t.Errorf("first recommended article = %s, want near", firstID)
	}
}

func TestFeedCatalogUnavailable(t *testing.T) {
	env := newTestEnv(t, failingSource{}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/feed?user_id=u1")
	if err != nil {
		t.Fatalf("GET /feed: %v", err)
	}
	body := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestGetProfileColdStart(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/users/newcomer/profile")
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	body := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	vector := dataField(t, body, "vector_profile").([]interface{})
	if len(vector) != 5 {
		t.Fatalf("vector length = %d, want 5", len(vector))
	}
	for i, v := range vector {
		if v.(float64) != 0.1 {
			t.Errorf("vector[%d] = %v, want cold-start 0.1", i, v)
		}
	}
}

func TestRecordReadLifecycle(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	post := func() (*http.Response, APIResponse) {
		body := bytes.NewBufferString(`{"article_id": "a1", "source": "click"}`)
		resp, err := http.Post(env.server.URL+"/api/v1/users/u1/reads", "application/json", body)
		if err != nil {
			t.Fatalf("POST /reads: %v", err)
		}
		return resp, decodeResponse(t, resp)
	}

	// First read: accepted and recorded.
	resp, body := post()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("first read status = %d, want 202", resp.StatusCode)
	}
	if recorded := dataField(t, body, "recorded").(bool); !recorded {
		t.Error("first read recorded = false")
	}

	// Second read: success, flagged duplicate, no further effect.
	resp, body = post()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("duplicate read status = %d, want 200", resp.StatusCode)
	}
	if dup := dataField(t, body, "duplicate").(bool); !dup {
		t.Error("duplicate read not flagged")
	}

	p := env.profiles.Load(context.Background(), "u1")
	if len(p.ReadHistory) != 1 {
		t.Errorf("read history = %v, want single entry", p.ReadHistory)
	}
}

func TestRecordReadUnknownArticle(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	body := bytes.NewBufferString(`{"article_id": "missing"}`)
	resp, err := http.Post(env.server.URL+"/api/v1/users/u1/reads", "application/json", body)
	if err != nil {
		t.Fatalf("POST /reads: %v", err)
	}
	decoded := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if decoded.Error == nil || decoded.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", decoded.Error)
	}
}

func TestRecordReadValidation(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"article_id":`},
		{name: "missing article id", body: `{"source": "click"}`},
		{name: "unknown source", body: `{"article_id": "a1", "source": "share"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(env.server.URL+"/api/v1/users/u1/reads", "application/json", bytes.NewBufferString(tt.body))
			if err != nil {
				t.Fatalf("POST /reads: %v", err)
			}
			decodeResponse(t, resp)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestUpdateInterests(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	body := bytes.NewBufferString(`{"categories": ["경제", "세계"]}`)
	req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/v1/users/u1/interests", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /interests: %v", err)
	}
	decoded := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	vector := dataField(t, decoded, "vector_profile").([]interface{})
	want := []float64{0, 0.8, 0, 0, 0.8}
	for i, v := range vector {
		if v.(float64) != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestUpdateInterestsValidation(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/v1/users/u1/interests",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /interests: %v", err)
	}
	decodeResponse(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSavedListAfterRead(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	body := bytes.NewBufferString(`{"article_id": "a2", "source": "like"}`)
	if resp, err := http.Post(env.server.URL+"/api/v1/users/u1/reads", "application/json", body); err != nil {
		t.Fatalf("POST /reads: %v", err)
	} else {
		decodeResponse(t, resp)
	}

	// The audit write is asynchronous.
	deadline := time.Now().Add(2 * time.Second)
	for env.auditStore.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get(env.server.URL + "/api/v1/users/u1/saved")
	if err != nil {
		t.Fatalf("GET /saved: %v", err)
	}
	decoded := decodeResponse(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	events := dataField(t, decoded, "events").([]interface{})
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0].(map[string]interface{})
	if ev["article_id"] != "a2" || ev["source"] != "like" {
		t.Errorf("event = %v", ev)
	}
}

func TestSavedListLimitValidation(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/users/u1/saved?limit=0")
	if err != nil {
		t.Fatalf("GET /saved: %v", err)
	}
	decodeResponse(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(env.server.URL + path)
			if err != nil {
				t.Fatalf("GET %s: %v", path, err)
			}
			decodeResponse(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
		})
	}
}

func TestHealthReadyFailsWhenSourceDown(t *testing.T) {
	env := newTestEnv(t, failingSource{}, 15)

	resp, err := http.Get(env.server.URL + "/api/v1/health/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	decodeResponse(t, resp)

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	env := newTestEnv(t, &staticSource{articles: fixtureArticles(5)}, 15)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
