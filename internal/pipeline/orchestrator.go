package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/imgpress/imgpress/internal/codec"
	"github.com/imgpress/imgpress/internal/planner"
)

// stage is the orchestrator's explicit state. Modeling the fallback as
// states rather than nested error handling makes the "exactly one retry,
// strictly simpler plan" invariant structural: there is no transition out
// of fallbackEncoding except done or failed.
type stage int

const (
	stagePlanning stage = iota
	stageEncoding
	stageFallbackPlanning
	stageFallbackEncoding
	stageDone
	stageFailed
)

// Outcome is the result of a successful compression: the encoded bytes and
// the format that actually produced them (which differs from the initial
// plan when the fallback fired).
type Outcome struct {
	Data     []byte
	Format   planner.Format
	Size     int
	Fallback bool // true when the bytes came from the fallback attempt
}

// Orchestrator drives one compression request through plan → encode →
// (on capacity error) fallback plan → fallback encode. It holds no mutable
// state across requests; concurrent calls are independent.
type Orchestrator struct {
	tun   *planner.Tunables
	codec codec.Codec
	log   zerolog.Logger
}

// New builds an orchestrator on the given codec and planning constants.
func New(tun *planner.Tunables, c codec.Codec, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{tun: tun, codec: c, log: log}
}

// Compress probes the source, then runs the two-attempt state machine.
// It returns a nil Outcome with an error when the request is unrecoverable;
// the caller is expected to delegate to its origin fallback in that case.
func (o *Orchestrator) Compress(ctx context.Context, data []byte, req planner.Request) (*Outcome, error) {
	src, err := o.codec.Probe(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	var (
		plan    *planner.EncodePlan
		out     []byte
		lastErr error
	)

	for st := stagePlanning; ; {
		switch st {
		case stagePlanning:
			plan = planner.BuildPlan(o.tun, src, req)
			st = stageEncoding

		case stageEncoding:
			out, lastErr = o.codec.Encode(ctx, data, plan)
			switch {
			case lastErr == nil:
				st = stageDone
			case codec.IsCapacity(lastErr):
				o.log.Warn().
					Str("format", string(plan.Format)).
					Err(lastErr).
					Msg("container capacity exceeded, re-planning")
				st = stageFallbackPlanning
			default:
				st = stageFailed
			}

		case stageFallbackPlanning:
			plan = planner.BuildFallbackPlan(o.tun, src, req)
			st = stageFallbackEncoding

		case stageFallbackEncoding:
			out, lastErr = o.codec.Encode(ctx, data, plan)
			if lastErr == nil {
				st = stageDone
			} else {
				// A second failure of any kind ends the request; a
				// capacity error on the already-minimal plan has no
				// simpler plan left to try.
				st = stageFailed
			}

		case stageDone:
			return &Outcome{
				Data:     out,
				Format:   plan.Format,
				Size:     len(out),
				Fallback: plan.Fallback,
			}, nil

		case stageFailed:
			return nil, fmt.Errorf("encode: %w", lastErr)
		}
	}
}
