// Package pipeline orchestrates one compression request: probe the source,
// build the encode plan, drive the codec, and recover from container
// capacity errors with a single strictly-simpler fallback attempt. Worst
// case work is bounded at two encode attempts per request.
package pipeline
