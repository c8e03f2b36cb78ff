// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package vectormath provides the numeric primitives for preference
// tracking: cosine similarity between content vectors and the
// element-wise average used as the profile update step.
//
// All functions are dimension-agnostic but require both operands to
// share the same length; unequal lengths are a data error surfaced as
// ErrDimensionMismatch.
package vectormath

import (
	"errors"
	"math"
)

// ErrDimensionMismatch indicates two vectors of different lengths were
// compared or averaged. This is a data error, not a runtime failure.
var ErrDimensionMismatch = errors.New("vectors must have the same dimensionality")

// CosineSimilarity returns the normalized dot product of a and b in
// [-1, 1]. When either vector has zero magnitude the similarity is
// defined as exactly 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// Average returns the element-wise arithmetic mean of a and b as a new
// slice. This is the sole profile update primitive: an exponential
// smoothing step with factor 0.5, so each new read pulls the profile
// exactly halfway toward the article's vector.
func Average(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, ErrDimensionMismatch
	}

	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out, nil
}
