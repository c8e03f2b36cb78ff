// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package catalog

// OutletVectors maps an outlet name to its hand-tuned content vector,
// used when an article carries no explicit embedding. This table is
// catalog configuration, not engine logic: deployments override it via
// the config file.
type OutletVectors map[string][]float64

// Dimensions is the dimensionality of the reference outlet mapping.
// The engine itself is dimension-agnostic; this anchors the default
// tables and the neutral vector.
const Dimensions = 5

// DefaultOutletVectors returns the reference outlet mapping. Dimension
// order: clinical-rigor, basic-science, policy-relevance,
// computational-tech, global-relevance.
func DefaultOutletVectors() OutletVectors {
	return OutletVectors{
		"JAMA":           {0.9, 0.1, 0.2, 0.0, 0.5},
		"JAMA Neurology": {0.9, 0.15, 0.2, 0.05, 0.5},
		"The Lancet":     {0.85, 0.2, 0.3, 0.1, 0.4},
		"Nature":         {0.2, 0.9, 0.1, 0.8, 0.3},
		"Nature Medicine": {0.7, 0.6, 0.3, 0.5, 0.4},
		"Science":         {0.2, 0.85, 0.1, 0.9, 0.3},
		"PNAS":            {0.3, 0.8, 0.15, 0.7, 0.3},
		"Cell":            {0.1, 0.95, 0.0, 0.4, 0.2},
		"Cell Stem Cell":  {0.15, 0.9, 0.05, 0.45, 0.25},
		"BMJ":             {0.8, 0.15, 0.6, 0.1, 0.5},
	}
}

// NeutralVector returns the universal fallback for unrecognized
// outlets.
func NeutralVector() []float64 {
	return []float64{0.5, 0.5, 0.5, 0.5, 0.5}
}

// Resolve returns the vector for an article: the explicit embedding if
// present and non-empty, else the outlet fallback, else the neutral
// vector.
func (v OutletVectors) Resolve(explicit []float64, outlet string) []float64 {
	if len(explicit) > 0 {
		return explicit
	}
	if vec, ok := v[outlet]; ok {
		out := make([]float64, len(vec))
		copy(out, vec)
		return out
	}
	return NeutralVector()
}
