package planner

// ArtifactTierSpec is one row of the artifact-reduction table: images with
// more than MinPixels pixels (single frame) get Params.
type ArtifactTierSpec struct {
	Tier      ArtifactTier
	MinPixels int
	Params    ArtifactParams
}

// AvifTierSpec is one row of the AVIF tuning table: images whose long edge
// exceeds MinLongEdge get Params.
type AvifTierSpec struct {
	Tier        AvifTier
	MinLongEdge int
	Params      AvifParams
}

// Tunables holds every planning constant: the dimension ceiling, the two
// tier tables, and the fixed filter parameters. Process-wide and immutable
// in normal operation; tests construct their own to probe threshold edges.
type Tunables struct {
	// AVIFDimensionLimit is the HEIF container's hard per-side pixel
	// ceiling. Sources exceeding it on either side are resized to fit
	// inside before an AVIF encode is attempted.
	AVIFDimensionLimit int

	// ArtifactTiers is evaluated top-down, first match wins. Must be
	// ordered from largest MinPixels to smallest, ending with a
	// MinPixels of 0 so every pixel count selects a row.
	ArtifactTiers []ArtifactTierSpec

	// AvifTiers is evaluated top-down, first match wins. Same ordering
	// contract as ArtifactTiers, against the long edge.
	AvifTiers []AvifTierSpec

	// EdgeSharpen is the fixed second sharpen pass applied to static
	// images above EdgeSharpenMinPixels, on top of the tier sharpen.
	// The tier sharpen softens pre-encode artifacts; this one restores
	// edge definition.
	EdgeSharpen          SharpenParams
	EdgeSharpenMinPixels int

	// AlphaQuality is the fixed alpha-plane quality for formats that
	// carry one.
	AlphaQuality int
}

// DefaultTunables returns the production planning constants.
func DefaultTunables() *Tunables {
	return &Tunables{
		AVIFDimensionLimit: 16384,

		ArtifactTiers: []ArtifactTierSpec{
			{ArtifactLarge, 3_000_000, ArtifactParams{BlurRadius: 0.40, DenoiseStrength: 0.15, SharpenSigma: 0.80, Saturation: 0.85}},
			{ArtifactMedium, 1_000_000, ArtifactParams{BlurRadius: 0.35, DenoiseStrength: 0.12, SharpenSigma: 0.60, Saturation: 0.90}},
			{ArtifactSmall, 500_000, ArtifactParams{BlurRadius: 0.30, DenoiseStrength: 0.10, SharpenSigma: 0.50, Saturation: 0.95}},
			// The lowest tier keeps the same mild filtering with full
			// saturation so the pipeline shape stays uniform for small
			// images rather than skipping the stage.
			{ArtifactSoften, 0, ArtifactParams{BlurRadius: 0.30, DenoiseStrength: 0.10, SharpenSigma: 0.50, Saturation: 1.00}},
		},

		AvifTiers: []AvifTierSpec{
			{AvifLarge, 2000, AvifParams{TileRows: 4, TileCols: 4, MinQuantizer: 30, MaxQuantizer: 50, Effort: 3}},
			{AvifMedium, 1000, AvifParams{TileRows: 2, TileCols: 2, MinQuantizer: 28, MaxQuantizer: 48, Effort: 4}},
			{AvifSmall, 0, AvifParams{TileRows: 1, TileCols: 1, MinQuantizer: 26, MaxQuantizer: 48, Effort: 4}},
		},

		EdgeSharpen:          SharpenParams{Sigma: 1.0, Flat: 1.0, Jagged: 0.5},
		EdgeSharpenMinPixels: 500_000,

		AlphaQuality: 80,
	}
}
