package planner

// ResolveResize clamps the target dimensions to the format's hard per-side
// ceiling. Only AVIF carries one in this pipeline; JPEG and WEBP outputs are
// never resized here. The returned box is the aspect-preserved fit of the
// source inside the clamped bound: never upscaled, never cropped.
func ResolveResize(format Format, width, height, limit int) *Box {
	if format != FormatAVIF {
		return nil
	}
	if width <= limit && height <= limit {
		return nil
	}

	boundW := minInt(width, limit)
	boundH := minInt(height, limit)

	outW, outH := width, height
	if outW > boundW {
		outH = outH * boundW / outW
		outW = boundW
	}
	if outH > boundH {
		outW = outW * boundH / outH
		outH = boundH
	}
	return &Box{Width: outW, Height: outH}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
