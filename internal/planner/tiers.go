package planner

// SelectArtifactTier walks the artifact table top-down and returns the first
// row whose pixel threshold the frame exceeds. The table's trailing zero row
// guarantees a match.
func SelectArtifactTier(tiers []ArtifactTierSpec, pixelCount int) (ArtifactTier, ArtifactParams) {
	for _, t := range tiers {
		if pixelCount > t.MinPixels {
			return t.Tier, t.Params
		}
	}
	last := tiers[len(tiers)-1]
	return last.Tier, last.Params
}

// SelectAvifTier walks the AVIF tuning table top-down against the long edge.
// Larger images get coarser tiling and lower effort to bound encode latency
// and memory, at the cost of a slightly wider quantizer window.
func SelectAvifTier(tiers []AvifTierSpec, width, height int) (AvifTier, AvifParams) {
	longEdge := width
	if height > longEdge {
		longEdge = height
	}
	for _, t := range tiers {
		if longEdge > t.MinLongEdge {
			return t.Tier, t.Params
		}
	}
	last := tiers[len(tiers)-1]
	return last.Tier, last.Params
}
