package domain

import "sort"

type Provider struct {
	ID  string
	Set *AvailabilitySet
}

type CompatibilityResult struct {
	ProviderID        string
	Intersection      *AvailabilitySet
	IntersectionCount int
	Percentage        float64
}

type CompatibilityTier string

const (
	TierHigh    CompatibilityTier = "high"
	TierMedium  CompatibilityTier = "medium"
	TierLow     CompatibilityTier = "low"
	TierMinimal CompatibilityTier = "minimal"
)

func (r CompatibilityResult) Tier() CompatibilityTier {
	switch {
	case r.Percentage >= 75:
		return TierHigh
	case r.Percentage >= 50:
		return TierMedium
	case r.Percentage >= 25:
		return TierLow
	default:
		return TierMinimal
	}
}

// Match ranks providers by how many of the seeker's cells they share.
//
// An empty seeker set disables filtering: every provider comes back in input
// order with zero overlap. Otherwise providers sharing no cell are dropped and
// the rest are ordered by overlap count descending, then provider ID.
func Match(seeker *AvailabilitySet, providers []Provider) []CompatibilityResult {
	seekerSize := seeker.Size()
	out := make([]CompatibilityResult, 0, len(providers))

	if seekerSize == 0 {
		for _, p := range providers {
			out = append(out, CompatibilityResult{
				ProviderID:   p.ID,
				Intersection: NewAvailabilitySet(),
			})
		}
		return out
	}

	for _, p := range providers {
		common := seeker.Intersect(p.Set)
		n := common.Size()
		if n == 0 {
			continue
		}
		out = append(out, CompatibilityResult{
			ProviderID:        p.ID,
			Intersection:      common,
			IntersectionCount: n,
			Percentage:        float64(n) / float64(seekerSize) * 100,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IntersectionCount != out[j].IntersectionCount {
			return out[i].IntersectionCount > out[j].IntersectionCount
		}
		return out[i].ProviderID < out[j].ProviderID
	})
	return out
}
