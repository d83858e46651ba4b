package planner

// Format is the output image format decided for a request.
type Format string

const (
	FormatJPEG Format = "jpeg" // Baseline output for clients without AVIF support.
	FormatAVIF Format = "avif" // Modern output, offered only on client opt-in.
	FormatWEBP Format = "webp" // Forced for animations; also the fallback for animated sources.
)

// Extension returns the filename extension for the format (with leading dot).
func (f Format) Extension() string {
	switch f {
	case FormatAVIF:
		return ".avif"
	case FormatWEBP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// ArtifactTier labels one row of the artifact-reduction table.
type ArtifactTier string

const (
	ArtifactSoften ArtifactTier = "soften" // Smallest images: mild filtering, full saturation.
	ArtifactSmall  ArtifactTier = "small"
	ArtifactMedium ArtifactTier = "medium"
	ArtifactLarge  ArtifactTier = "large"
)

// AvifTier labels one row of the AVIF tuning table.
type AvifTier string

const (
	AvifSmall  AvifTier = "small"
	AvifMedium AvifTier = "medium"
	AvifLarge  AvifTier = "large"
)

// SourceInfo holds the decoded metadata of the input image. It is produced
// once by the codec probe and never mutated.
type SourceInfo struct {
	Width      int
	Height     int
	FrameCount int
}

// PixelCount returns width*height of a single frame.
func (s SourceInfo) PixelCount() int {
	return s.Width * s.Height
}

// IsAnimated reports whether the source has more than one frame.
func (s SourceInfo) IsAnimated() bool {
	return s.FrameCount > 1
}

// Request carries the client's capability and quality hints for one
// compression. Immutable once built by the transport layer.
type Request struct {
	AcceptsModern bool // Client advertised AVIF support.
	Quality       int  // 1-100.
	Grayscale     bool
	OriginSize    int64  // Bytes as reported by the origin; 0 when unknown.
	SourceURL     string // Used only for output naming.
}

// Box is a bounding box for fit-inside resizing.
type Box struct {
	Width  int
	Height int
}

// ArtifactParams is the filter bundle selected by the artifact-reduction
// table: a light blur and denoise to soften compression artifacts, a sharpen
// to recover detail, and a chroma attenuation for large images.
type ArtifactParams struct {
	BlurRadius      float64
	DenoiseStrength float64
	SharpenSigma    float64
	Saturation      float64 // 1.0 means no chroma change.
}

// SharpenParams describes an edge-aware sharpen pass.
type SharpenParams struct {
	Sigma  float64
	Flat   float64
	Jagged float64
}

// AvifParams is the encoder tuning bundle selected by the AVIF table.
type AvifParams struct {
	TileRows     int
	TileCols     int
	MinQuantizer int
	MaxQuantizer int
	Effort       int
}

// EncodePlan holds the complete set of decisions for one encode attempt.
// It is produced by BuildPlan (or BuildFallbackPlan) and consumed by the
// codec; it is never mutated after being handed over. A fallback is a new,
// strictly simpler plan, not an edit of the original.
type EncodePlan struct {
	Format    Format
	Quality   int
	Grayscale bool
	Animated  bool

	// Resize is set only when the AVIF dimension ceiling forces one.
	Resize *Box

	// Artifact reduction (nil when the stage is skipped: WEBP output,
	// animated sources, and all fallback plans).
	ArtifactTier ArtifactTier
	Artifact     *ArtifactParams

	// Fixed edge sharpen, independent of the tier sharpen (nil when not
	// applied).
	EdgeSharpen *SharpenParams

	// AVIF-only tuning (nil for other formats and for fallback plans).
	AvifTier AvifTier
	Avif     *AvifParams

	// AlphaQuality applies to formats with an alpha plane.
	AlphaQuality int

	// Fallback marks the plan as the post-capacity-error retry.
	Fallback bool
}
