package planner

// BuildPlan produces the complete EncodePlan for one request. This is the
// central decision matrix the orchestrator calls before the first encode
// attempt.
//
// Flow:
//  1. Decide output format (animation override, AVIF opt-in)
//  2. Clamp dimensions to the AVIF container ceiling
//  3. Select the artifact-reduction tier from pixel count
//  4. Select the fixed edge sharpen pass
//  5. Select AVIF tiling/quantizer/effort from the long edge
func BuildPlan(tun *Tunables, src SourceInfo, req Request) *EncodePlan {
	animated := src.IsAnimated()

	plan := &EncodePlan{
		Quality:      req.Quality,
		Grayscale:    req.Grayscale,
		Animated:     animated,
		AlphaQuality: tun.AlphaQuality,
	}

	// --- 1. Format ---
	plan.Format = SelectFormat(req.AcceptsModern, animated)

	// --- 2. Dimension ceiling ---
	plan.Resize = ResolveResize(plan.Format, src.Width, src.Height, tun.AVIFDimensionLimit)

	// --- 3. Artifact reduction (static JPEG/AVIF only) ---
	if !animated && plan.Format != FormatWEBP {
		tier, params := SelectArtifactTier(tun.ArtifactTiers, src.PixelCount())
		plan.ArtifactTier = tier
		plan.Artifact = &params
	}

	// --- 4. Edge sharpen (static, above threshold, any format) ---
	if !animated && src.PixelCount() > tun.EdgeSharpenMinPixels {
		sharpen := tun.EdgeSharpen
		plan.EdgeSharpen = &sharpen
	}

	// --- 5. AVIF tuning ---
	if plan.Format == FormatAVIF {
		tier, params := SelectAvifTier(tun.AvifTiers, src.Width, src.Height)
		plan.AvifTier = tier
		plan.Avif = &params
	}

	return plan
}

// BuildFallbackPlan produces the strictly simpler plan used after a capacity
// error: the format downgrades to WEBP for animations and JPEG otherwise,
// and every tuning stage (AVIF parameters, artifact reduction, edge sharpen,
// resize) is dropped. Only quality and grayscale survive from the request.
func BuildFallbackPlan(tun *Tunables, src SourceInfo, req Request) *EncodePlan {
	animated := src.IsAnimated()

	format := FormatJPEG
	if animated {
		format = FormatWEBP
	}

	return &EncodePlan{
		Format:       format,
		Quality:      req.Quality,
		Grayscale:    req.Grayscale,
		Animated:     animated,
		AlphaQuality: tun.AlphaQuality,
		Fallback:     true,
	}
}
