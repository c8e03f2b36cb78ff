// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package profile

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

const floatTolerance = 1e-9

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > floatTolerance {
			return false
		}
	}
	return true
}

// failingStore simulates persistence failures for both operations.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, userID string) (*Profile, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Put(ctx context.Context, p *Profile) error {
	return errors.New("store unavailable")
}

func TestManagerLoadColdStart(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)

	p := m.Load(context.Background(), "user-1")
	if p.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", p.UserID, "user-1")
	}
	if !floatsEqual(p.VectorProfile, []float64{0.1, 0.1, 0.1, 0.1, 0.1}) {
		t.Errorf("cold-start vector = %v", p.VectorProfile)
	}
	if len(p.ReadHistory) != 0 {
		t.Errorf("cold-start history = %v, want empty", p.ReadHistory)
	}
}

func TestManagerLoadSurvivesStoreFailure(t *testing.T) {
	m := NewManager(failingStore{}, nil, 5)

	p := m.Load(context.Background(), "user-1")
	if p == nil {
		t.Fatal("Load returned nil on store failure")
	}
	if !floatsEqual(p.VectorProfile, []float64{0.1, 0.1, 0.1, 0.1, 0.1}) {
		t.Errorf("vector = %v, want cold-start default", p.VectorProfile)
	}
}

func TestManagerRecordRead(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, nil, 5)
	ctx := context.Background()

	article := []float64{0.9, 0.1, 0.2, 0.0, 0.5}
	recorded, err := m.RecordRead(ctx, "user-1", "a1", article)
	if err != nil {
		t.Fatalf("RecordRead() error = %v", err)
	}
	if !recorded {
		t.Fatal("RecordRead() = false, want true for first read")
	}

	p := m.Load(ctx, "user-1")
	want := []float64{0.5, 0.1, 0.15, 0.05, 0.3}
	if !floatsEqual(p.VectorProfile, want) {
		t.Errorf("vector after read = %v, want %v", p.VectorProfile, want)
	}
	if len(p.ReadHistory) != 1 || p.ReadHistory[0] != "a1" {
		t.Errorf("history = %v, want [a1]", p.ReadHistory)
	}

	// Durable copy matches the in-memory state.
	saved, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if !floatsEqual(saved.VectorProfile, want) {
		t.Errorf("persisted vector = %v, want %v", saved.VectorProfile, want)
	}
}

func TestManagerRecordReadIdempotent(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)
	ctx := context.Background()
	article := []float64{0.9, 0.1, 0.2, 0.0, 0.5}

	if _, err := m.RecordRead(ctx, "user-1", "a1", article); err != nil {
		t.Fatalf("first RecordRead() error = %v", err)
	}
	after := m.Load(ctx, "user-1").VectorProfile

	recorded, err := m.RecordRead(ctx, "user-1", "a1", article)
	if err != nil {
		t.Fatalf("second RecordRead() error = %v", err)
	}
	if recorded {
		t.Error("second RecordRead() = true, want false")
	}

	p := m.Load(ctx, "user-1")
	if !floatsEqual(p.VectorProfile, after) {
		t.Errorf("vector changed on duplicate read: %v != %v", p.VectorProfile, after)
	}
	if len(p.ReadHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(p.ReadHistory))
	}
}

func TestManagerRecordReadDimensionMismatch(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)

	_, err := m.RecordRead(context.Background(), "user-1", "a1", []float64{0.5, 0.5})
	if err == nil {
		t.Fatal("RecordRead() with short vector: expected error")
	}

	p := m.Load(context.Background(), "user-1")
	if len(p.ReadHistory) != 0 {
		t.Errorf("history = %v, want untouched", p.ReadHistory)
	}
}

func TestManagerRecordReadSurvivesPersistFailure(t *testing.T) {
	m := NewManager(failingStore{}, nil, 5)
	ctx := context.Background()

	recorded, err := m.RecordRead(ctx, "user-1", "a1", []float64{0.9, 0.1, 0.2, 0.0, 0.5})
	if err != nil {
		t.Fatalf("RecordRead() error = %v", err)
	}
	if !recorded {
		t.Fatal("RecordRead() = false, want true despite store failure")
	}

	// In-memory state is still authoritative.
	p := m.Load(ctx, "user-1")
	if !p.HasRead("a1") {
		t.Error("in-memory profile lost the read after persist failure")
	}
}

func TestManagerSetInterests(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       []float64
	}{
		{
			name:       "two categories",
			categories: []string{"정치", "IT/과학"},
			want:       []float64{0.8, 0.0, 0.0, 0.8, 0.0},
		},
		{
			name:       "all categories",
			categories: []string{"정치", "경제", "사회", "IT/과학", "세계"},
			want:       []float64{0.8, 0.8, 0.8, 0.8, 0.8},
		},
		{
			name:       "empty selection zeroes the vector",
			categories: nil,
			want:       []float64{0.0, 0.0, 0.0, 0.0, 0.0},
		},
		{
			name:       "unknown category ignored",
			categories: []string{"스포츠", "경제"},
			want:       []float64{0.0, 0.8, 0.0, 0.0, 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(NewMemoryStore(), nil, 5)
			p := m.SetInterests(context.Background(), "user-1", tt.categories)
			if !floatsEqual(p.VectorProfile, tt.want) {
				t.Errorf("vector = %v, want %v", p.VectorProfile, tt.want)
			}
		})
	}
}

func TestManagerSetInterestsOverwritesLearnedState(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)
	ctx := context.Background()

	if _, err := m.RecordRead(ctx, "user-1", "a1", []float64{0.9, 0.9, 0.9, 0.9, 0.9}); err != nil {
		t.Fatalf("RecordRead() error = %v", err)
	}

	p := m.SetInterests(ctx, "user-1", []string{"세계"})
	want := []float64{0.0, 0.0, 0.0, 0.0, 0.8}
	if !floatsEqual(p.VectorProfile, want) {
		t.Errorf("vector = %v, want hard reset %v", p.VectorProfile, want)
	}
	// Read history survives onboarding.
	if !p.HasRead("a1") {
		t.Error("read history lost after interest reset")
	}
	if p.Interests["세계"] != 0.8 {
		t.Errorf("interests = %v, want 세계=0.8", p.Interests)
	}
}

func TestManagerMergeKeywords(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)
	ctx := context.Background()

	m.MergeKeywords(ctx, "user-1", []string{"CRISPR", "gene therapy", "crispr", " Immunology ", ""})

	p := m.Load(ctx, "user-1")
	if p.KeywordProfile["crispr"] != 2 {
		t.Errorf("crispr count = %d, want 2", p.KeywordProfile["crispr"])
	}
	if p.KeywordProfile["gene therapy"] != 1 {
		t.Errorf("gene therapy count = %d, want 1", p.KeywordProfile["gene therapy"])
	}
	if p.KeywordProfile["immunology"] != 1 {
		t.Errorf("immunology count = %d, want 1", p.KeywordProfile["immunology"])
	}
	if _, ok := p.KeywordProfile[""]; ok {
		t.Error("empty keyword stored")
	}
}

func TestManagerLoadReturnsSnapshot(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)
	ctx := context.Background()

	p := m.Load(ctx, "user-1")
	p.VectorProfile[0] = 99
	p.KeywordProfile["injected"] = 1

	fresh := m.Load(ctx, "user-1")
	if fresh.VectorProfile[0] == 99 {
		t.Error("mutating a snapshot changed manager state")
	}
	if _, ok := fresh.KeywordProfile["injected"]; ok {
		t.Error("mutating a snapshot keyword map changed manager state")
	}
}

func TestManagerConcurrentReads(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%10))
			_, _ = m.RecordRead(ctx, "user-1", id, []float64{0.5, 0.5, 0.5, 0.5, 0.5})
			m.MergeKeywords(ctx, "user-1", []string{"oncology"})
		}(i)
	}
	wg.Wait()

	p := m.Load(ctx, "user-1")
	if len(p.ReadHistory) != 10 {
		t.Errorf("history length = %d, want 10 distinct articles", len(p.ReadHistory))
	}
	if p.KeywordProfile["oncology"] != 20 {
		t.Errorf("oncology count = %d, want 20", p.KeywordProfile["oncology"])
	}
}
