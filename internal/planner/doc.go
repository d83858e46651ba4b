// Package planner turns decoded source metadata and client hints into an
// EncodePlan: output format, dimension clamping, artifact-reduction filter
// tier, and AVIF encoder tuning. All decisions are pure functions over the
// injected Tunables; tier tables are ordered threshold lists evaluated
// top-down, first match wins.
package planner
