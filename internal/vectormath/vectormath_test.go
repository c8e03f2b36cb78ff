// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package vectormath

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    float64
		wantErr error
	}{
		{
			name: "identical nonzero vectors score 1",
			a:    []float64{0.3, 0.5, 0.2},
			b:    []float64{0.3, 0.5, 0.2},
			want: 1.0,
		},
		{
			name: "orthogonal vectors score 0",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors score -1",
			a:    []float64{1, 1},
			b:    []float64{-1, -1},
			want: -1.0,
		},
		{
			name: "zero vector scores 0 by definition",
			a:    []float64{0, 0, 0},
			b:    []float64{0.4, 0.1, 0.9},
			want: 0,
		},
		{
			name: "both zero vectors score 0",
			a:    []float64{0, 0},
			b:    []float64{0, 0},
			want: 0,
		},
		{
			name:    "dimension mismatch",
			a:       []float64{1, 2, 3},
			b:       []float64{1, 2},
			wantErr: ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CosineSimilarity() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CosineSimilarity() unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	pairs := [][2][]float64{
		{{0.1, 0.1, 0.1, 0.1, 0.1}, {0.9, 0.1, 0.2, 0.0, 0.5}},
		{{0.2, 0.9, 0.1, 0.8, 0.3}, {0.8, 0.15, 0.6, 0.1, 0.5}},
		{{1, 2, 3}, {3, 2, 1}},
	}

	for _, pair := range pairs {
		ab, err := CosineSimilarity(pair[0], pair[1])
		if err != nil {
			t.Fatalf("CosineSimilarity(a, b) error: %v", err)
		}
		ba, err := CosineSimilarity(pair[1], pair[0])
		if err != nil {
			t.Fatalf("CosineSimilarity(b, a) error: %v", err)
		}
		if math.Abs(ab-ba) > epsilon {
			t.Errorf("similarity not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    []float64
		wantErr error
	}{
		{
			name: "cold start profile averaged with article vector",
			a:    []float64{0.1, 0.1, 0.1, 0.1, 0.1},
			b:    []float64{0.9, 0.1, 0.2, 0.0, 0.5},
			want: []float64{0.5, 0.1, 0.15, 0.05, 0.3},
		},
		{
			name: "average with self is identity",
			a:    []float64{0.4, 0.6},
			b:    []float64{0.4, 0.6},
			want: []float64{0.4, 0.6},
		},
		{
			name:    "dimension mismatch",
			a:       []float64{1},
			b:       []float64{1, 2},
			wantErr: ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Average(tt.a, tt.b)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Average() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Average() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Average() length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > epsilon {
					t.Errorf("Average()[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAverageDoesNotMutateInputs(t *testing.T) {
	a := []float64{0.2, 0.4}
	b := []float64{0.6, 0.8}

	if _, err := Average(a, b); err != nil {
		t.Fatalf("Average() error: %v", err)
	}

	if a[0] != 0.2 || a[1] != 0.4 {
		t.Errorf("Average() mutated first input: %v", a)
	}
	if b[0] != 0.6 || b[1] != 0.8 {
		t.Errorf("Average() mutated second input: %v", b)
	}
}
