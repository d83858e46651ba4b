//go:build cgo

package codec

import (
	"context"
	"fmt"

	"github.com/cshum/vipsgen/vips"

	"github.com/imgpress/imgpress/internal/planner"
)

// VipsCodec implements Codec on libvips through the vipsgen bindings.
// Instances are stateless; concurrency is bounded by the caller and by the
// libvips concurrency level set at Startup.
type VipsCodec struct{}

// NewVips returns the libvips-backed codec. Startup must have been called.
func NewVips() *VipsCodec {
	return &VipsCodec{}
}

// Startup initializes the global libvips state. Call once at process start.
func Startup(concurrency int) {
	vips.Startup(&vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheMem:      100 * 1024 * 1024,
		MaxCacheSize:     500,
	})
}

// Shutdown releases the global libvips state.
func Shutdown() {
	vips.Shutdown()
}

// Probe decodes the header and reports single-frame dimensions and frame
// count. For animated sources libvips exposes the frames as a vertical
// strip, so the frame height is the page height, not the strip height.
func (c *VipsCodec) Probe(ctx context.Context, data []byte) (planner.SourceInfo, error) {
	if err := ctx.Err(); err != nil {
		return planner.SourceInfo{}, err
	}

	opts := vips.DefaultLoadOptions()
	opts.N = -1
	img, err := vips.NewImageFromBuffer(data, opts)
	if err != nil {
		return planner.SourceInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	frames := img.Pages()
	height := img.Height()
	if frames > 1 {
		height = img.PageHeight()
	}
	return planner.SourceInfo{
		Width:      img.Width(),
		Height:     height,
		FrameCount: frames,
	}, nil
}

// Encode executes one plan: load, grayscale, resize, artifact filters, edge
// sharpen, format save. Filter order matters: grayscale first (both for
// initial and fallback plans), then geometry, then the softening filters,
// then the edge sharpen.
func (c *VipsCodec) Encode(ctx context.Context, data []byte, plan *planner.EncodePlan) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loadOpts := vips.DefaultLoadOptions()
	loadOpts.Access = vips.AccessRandom
	if plan.Animated {
		loadOpts.N = -1
	}
	img, err := vips.NewImageFromBuffer(data, loadOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	if plan.Grayscale {
		if err := img.Colourspace(vips.InterpretationBW, nil); err != nil {
			return nil, ClassifyEncode(err)
		}
	}

	if plan.Resize != nil {
		if err := resizeInside(img, plan.Resize); err != nil {
			return nil, ClassifyEncode(err)
		}
	}

	if plan.Artifact != nil {
		if err := applyArtifactReduction(img, plan.Artifact); err != nil {
			return nil, ClassifyEncode(err)
		}
	}

	if plan.EdgeSharpen != nil {
		if err := sharpen(img, plan.EdgeSharpen.Sigma, plan.EdgeSharpen.Flat, plan.EdgeSharpen.Jagged); err != nil {
			return nil, ClassifyEncode(err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := save(img, plan)
	if err != nil {
		return nil, ClassifyEncode(err)
	}
	return out, nil
}

// resizeInside shrinks the image to fit inside the box, preserving aspect
// ratio. Never upscales and never crops.
func resizeInside(img *vips.Image, box *planner.Box) error {
	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	scale := float64(box.Width) / float64(w)
	if s := float64(box.Height) / float64(h); s < scale {
		scale = s
	}
	if scale >= 1 {
		return nil
	}
	return img.Resize(scale, vips.DefaultResizeOptions())
}

// applyArtifactReduction runs the tier's blur/denoise/sharpen/saturation
// bundle. The blur and denoise soften block artifacts before encoding, the
// tier sharpen recovers detail, and large images get their chroma pulled
// back slightly.
func applyArtifactReduction(img *vips.Image, p *planner.ArtifactParams) error {
	if p.BlurRadius > 0 {
		if err := img.Gaussblur(p.BlurRadius, nil); err != nil {
			return err
		}
	}
	if p.DenoiseStrength > 0 {
		if err := img.Median(medianWindow(p.DenoiseStrength)); err != nil {
			return err
		}
	}
	if p.SharpenSigma > 0 {
		if err := sharpen(img, p.SharpenSigma, 0, 0); err != nil {
			return err
		}
	}
	if p.Saturation != 1.0 {
		if err := attenuateChroma(img, p.Saturation); err != nil {
			return err
		}
	}
	return nil
}

// medianWindow maps a denoise strength to an odd median window size.
// Strengths in the configured range (0.10-0.15) all land on the smallest
// window; the formula leaves room for stronger settings in tests.
func medianWindow(strength float64) int {
	return 2*int(strength*10) + 1
}

// sharpen applies the libvips unsharp mask. flat (m1) and jagged (m2) of
// zero keep the binding defaults, which is what the tier sharpen wants.
func sharpen(img *vips.Image, sigma, flat, jagged float64) error {
	opts := vips.DefaultSharpenOptions()
	opts.Sigma = sigma
	if flat > 0 {
		opts.M1 = flat
	}
	if jagged > 0 {
		opts.M2 = jagged
	}
	return img.Sharpen(opts)
}

// attenuateChroma scales the chroma channel in LCh space, which is how a
// saturation multiplier is expressed in libvips.
func attenuateChroma(img *vips.Image, saturation float64) error {
	if err := img.Colourspace(vips.InterpretationLch, nil); err != nil {
		return err
	}
	if err := img.Linear([]float64{1, saturation, 1}, []float64{0, 0, 0}, nil); err != nil {
		return err
	}
	return img.Colourspace(vips.InterpretationSrgb, nil)
}

// save encodes the processed image per the plan's format.
func save(img *vips.Image, plan *planner.EncodePlan) ([]byte, error) {
	switch plan.Format {
	case planner.FormatJPEG:
		opts := vips.DefaultJpegsaveBufferOptions()
		opts.Q = plan.Quality
		opts.OptimizeCoding = true
		opts.SubsampleMode = vips.ForeignSubsampleOn // 4:2:0
		opts.Keep = vips.KeepNone
		return img.JpegsaveBuffer(opts)

	case planner.FormatWEBP:
		opts := vips.DefaultWebpsaveBufferOptions()
		opts.Q = plan.Quality
		opts.AlphaQ = plan.AlphaQuality
		opts.SmartSubsample = true
		if plan.Animated {
			// Keep frame metadata and force infinite looping; PageHeight
			// is what makes libvips emit an animation at all.
			img.SetInt("loop", 0)
			opts.Keep = vips.KeepAll
			opts.PageHeight = img.PageHeight()
		} else {
			opts.Keep = vips.KeepNone
		}
		return img.WebpsaveBuffer(opts)

	case planner.FormatAVIF:
		opts := vips.DefaultHeifsaveBufferOptions()
		opts.Compression = vips.ForeignHeifCompressionAv1
		opts.SubsampleMode = vips.ForeignSubsampleOn
		opts.Keep = vips.KeepNone
		opts.Q = plan.Quality
		if plan.Avif != nil {
			opts.Effort = plan.Avif.Effort
			// libheif exposes a single quality knob, so the planner's
			// quantizer window collapses to its midpoint here. Tile
			// geometry has no heifsave equivalent and is carried only
			// for encoders that accept it.
			opts.Q = quantizerWindowQ(plan.Avif.MinQuantizer, plan.Avif.MaxQuantizer)
		}
		return img.HeifsaveBuffer(opts)

	default:
		return nil, fmt.Errorf("unsupported output format %q", plan.Format)
	}
}

// quantizerWindowQ maps an AV1 quantizer window (0-63, lower is better) to
// the 1-100 quality scale (higher is better) via the window midpoint.
func quantizerWindowQ(minQ, maxQ int) int {
	mid := (minQ + maxQ) / 2
	q := 100 - mid*100/63
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}
