package planner

// SelectFormat decides the output format from the client's capability hint
// and the source's animation state. Animations always become WEBP: animated
// AVIF trips per-frame container limits and animated JPEG does not exist.
func SelectFormat(acceptsModern, animated bool) Format {
	if animated {
		return FormatWEBP
	}
	if acceptsModern {
		return FormatAVIF
	}
	return FormatJPEG
}
