// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package profile

// DefaultCategories is the onboarding category order of the reference
// catalog; index i maps onto vector dimension i.
var DefaultCategories = []string{"정치", "경제", "사회", "IT/과학", "세계"}

// Cold-start dimension weight and onboarding selection weight.
const (
	coldStartWeight = 0.1
	interestWeight  = 0.8
)

// Profile is one user's preference state.
type Profile struct {
	// UserID identifies the owning user.
	UserID string `json:"uid"`

	// Interests maps category labels to weights. Auxiliary and
	// informational; the vector profile is what ranking consumes.
	Interests map[string]float64 `json:"interests"`

	// ReadHistory holds the IDs of consumed articles. Set semantics:
	// membership is what matters, duplicates are forbidden.
	ReadHistory []string `json:"read_history"`

	// VectorProfile is the aggregated taste vector, same
	// dimensionality as the catalog's content vectors.
	VectorProfile []float64 `json:"vector_profile"`

	// KeywordProfile maps lowercase keywords to frequency counts.
	KeywordProfile map[string]int `json:"keyword_profile"`
}

// Default returns the cold-start profile for a user: a small uniform
// positive vector, empty history and empty keyword table.
func Default(userID string, dimensions int) *Profile {
	vec := make([]float64, dimensions)
	for i := range vec {
		vec[i] = coldStartWeight
	}
	return &Profile{
		UserID:         userID,
		Interests:      make(map[string]float64),
		ReadHistory:    []string{},
		VectorProfile:  vec,
		KeywordProfile: make(map[string]int),
	}
}

// HasRead reports whether the article ID is already in the history.
func (p *Profile) HasRead(articleID string) bool {
	for _, id := range p.ReadHistory {
		if id == articleID {
			return true
		}
	}
	return false
}

// normalize backfills fields that older persisted snapshots may lack.
func (p *Profile) normalize(dimensions int) {
	if p.Interests == nil {
		p.Interests = make(map[string]float64)
	}
	if p.ReadHistory == nil {
		p.ReadHistory = []string{}
	}
	if p.KeywordProfile == nil {
		p.KeywordProfile = make(map[string]int)
	}
	if len(p.VectorProfile) == 0 {
		p.VectorProfile = Default(p.UserID, dimensions).VectorProfile
	}
}

// clone returns a deep copy, so snapshots handed to callers cannot
// race with subsequent mutations.
func (p *Profile) clone() *Profile {
	out := &Profile{
		UserID:         p.UserID,
		Interests:      make(map[string]float64, len(p.Interests)),
		ReadHistory:    make([]string, len(p.ReadHistory)),
		VectorProfile:  make([]float64, len(p.VectorProfile)),
		KeywordProfile: make(map[string]int, len(p.KeywordProfile)),
	}
	for k, v := range p.Interests {
		out.Interests[k] = v
	}
	copy(out.ReadHistory, p.ReadHistory)
	copy(out.VectorProfile, p.VectorProfile)
	for k, v := range p.KeywordProfile {
		out.KeywordProfile[k] = v
	}
	return out
}
