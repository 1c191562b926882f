// Package pipeline composes the processing stages into a per-capture batch.
//
// For every capture the orchestrator runs boundary extraction and quad
// approximation; on success it continues through region statistics, scale
// calibration, and temperature mapping. Failures are isolated per capture: a
// capture that yields no boundary or no quad produces a failure record and a
// diagnostic notice, and the batch moves on. Only configuration-level errors
// (an invalid intensity span, cancelled context) abort the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/leighaderango/thermal-images/internal/config"
	"github.com/leighaderango/thermal-images/internal/contour"
	"github.com/leighaderango/thermal-images/internal/imaging"
	"github.com/leighaderango/thermal-images/internal/quad"
	"github.com/leighaderango/thermal-images/internal/scale"
	"github.com/leighaderango/thermal-images/internal/stats"
)

// Source is one capture to process: an in-memory image and the name carried
// into its record (typically the file path).
type Source struct {
	Name  string
	Image image.Image
}

// Record is the per-capture output of the pipeline. Records are created
// once, never mutated, and appear in the batch result in input order.
//
// When Converged is false, Failure says why and every derived field except
// VertexHistory is not available (left at its zero value).
type Record struct {
	// Source identifies the capture this record was derived from.
	Source string `json:"source"`

	// Converged is true when a four-vertex outline was found and the
	// derived fields below are populated.
	Converged bool `json:"converged"`

	// Failure describes why the capture was skipped. Empty on success.
	Failure string `json:"failure,omitempty"`

	// ToleranceFraction is the perimeter fraction that produced the quad.
	ToleranceFraction float64 `json:"tolerance_fraction,omitempty"`

	// VertexHistory is the vertex count at each tolerance step, recorded
	// for failed approximations as well as successful ones.
	VertexHistory []int `json:"vertex_history,omitempty"`

	// Quad is the four-vertex window outline.
	Quad []contour.Point `json:"quad,omitempty"`

	// InnerMean and OuterMean are mean gray intensity inside and outside
	// the outline.
	InnerMean float64 `json:"inner_mean"`
	OuterMean float64 `json:"outer_mean"`

	// InnerTemp and OuterTemp are the corresponding temperatures in °C.
	InnerTemp float64 `json:"inner_temp"`
	OuterTemp float64 `json:"outer_temp"`

	// Scale holds the endpoints used for the temperature mapping and
	// their imputation flags.
	Scale scale.Endpoints `json:"scale"`
}

// Pipeline runs the full processing chain over batches of captures.
type Pipeline struct {
	cfg    *config.Config
	prep   imaging.PrepParams
	scan   quad.Params
	cal    *scale.Calibrator
	mapper *scale.Mapper
}

// New validates the configuration and assembles a Pipeline around the given
// text-recognition reader.
//
// When cfg.IntensitySpan is 0 the mapper is deferred until Run, which
// measures the span from the first capture's scale bar.
func New(cfg *config.Config, reader scale.Reader) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg: cfg,
		prep: imaging.PrepParams{
			FirstBlurRadius:  cfg.FirstBlurRadius,
			SecondBlurRadius: cfg.SecondBlurRadius,
			Threshold:        cfg.Threshold,
		},
		scan: quad.Params{
			Start:   cfg.ToleranceStart,
			Step:    cfg.ToleranceStep,
			Ceiling: cfg.ToleranceCeiling,
		},
		cal: scale.NewCalibrator(reader, cfg.Calibrator),
	}

	if cfg.IntensitySpan != 0 {
		mapper, err := scale.NewMapper(cfg.IntensitySpan)
		if err != nil {
			return nil, err
		}
		p.mapper = mapper
	}
	return p, nil
}

// Run processes the captures in order and returns one Record per capture,
// index-aligned with the input.
//
// With cfg.Workers above 1 the captures are processed concurrently by an
// errgroup pool; each worker writes only its own slot of the result slice,
// so output order still matches input order. Per-capture failures never
// abort the batch; the returned error is reserved for configuration-level
// conditions (scale.ErrInvalidSpan when the measured span is unusable) and
// context cancellation.
func (p *Pipeline) Run(ctx context.Context, sources []Source) ([]Record, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	if p.mapper == nil {
		first := sources[0]
		span := scale.MeasureSpan(first.Image, p.cfg.ScaleBar.Rect(first.Image.Bounds()))
		mapper, err := scale.NewMapper(span)
		if err != nil {
			return nil, fmt.Errorf("measuring intensity span from %s: %w", first.Name, err)
		}
		p.mapper = mapper
	}

	records := make([]Record, len(sources))

	if p.cfg.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Workers)
		for i, src := range sources {
			i, src := i, src
			g.Go(func() error {
				rec, err := p.processOne(gctx, src)
				if err != nil {
					return err
				}
				records[i] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return records, nil
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := p.processOne(ctx, src)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// processOne runs the full chain on a single capture. Per-capture failures
// come back as failure records with a nil error; a non-nil error is either
// the context's or a configuration bug.
func (p *Pipeline) processOne(ctx context.Context, src Source) (Record, error) {
	rec := Record{Source: src.Name}

	binary := imaging.Binarize(src.Image, p.prep)
	boundary, err := contour.Largest(binary)
	if err != nil {
		log.Printf("skipping %s: %v", src.Name, err)
		rec.Failure = err.Error()
		return rec, nil
	}

	approx, err := quad.Approximate(boundary, p.scan)
	if err != nil {
		var noQuad *quad.NoQuadError
		if errors.As(err, &noQuad) {
			log.Printf("skipping %s: %v", src.Name, err)
			rec.Failure = "quad approximation did not converge"
			rec.VertexHistory = noQuad.History
			return rec, nil
		}
		return rec, err
	}

	gray := imaging.Grayscale(src.Image)
	means, err := stats.MeanIntensities(gray, approx.Vertices)
	if err != nil {
		return rec, err
	}

	endpoints, err := p.cal.Endpoints(ctx, src.Image)
	if err != nil {
		return rec, err
	}

	rec.Converged = true
	rec.ToleranceFraction = approx.ToleranceFraction
	rec.VertexHistory = approx.History
	rec.Quad = approx.Vertices
	rec.InnerMean = means.Inner
	rec.OuterMean = means.Outer
	rec.InnerTemp = p.mapper.Temperature(means.Inner, endpoints)
	rec.OuterTemp = p.mapper.Temperature(means.Outer, endpoints)
	rec.Scale = endpoints
	return rec, nil
}
