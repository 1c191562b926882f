package scale

import (
	"context"
	"image"
	"strconv"
	"strings"
)

// Anchor names the image corner a crop region is measured from.
type Anchor string

const (
	TopLeft     Anchor = "top-left"
	TopRight    Anchor = "top-right"
	BottomLeft  Anchor = "bottom-left"
	BottomRight Anchor = "bottom-right"
)

// CropSpec locates a fixed-size crop box relative to an image corner, so the
// same configuration works across captures of any resolution as long as the
// camera renders its scale labels at fixed corner offsets.
//
// DX and DY are measured from the anchor corner toward the image interior;
// the box extends Width x Height further inward from there.
type CropSpec struct {
	Anchor Anchor `json:"anchor" yaml:"anchor"`
	DX     int    `json:"dx" yaml:"dx"`
	DY     int    `json:"dy" yaml:"dy"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Rect resolves the crop box against concrete image bounds. The result is
// clipped to the bounds and may be empty if the configuration does not fit
// the image.
func (c CropSpec) Rect(bounds image.Rectangle) image.Rectangle {
	var x1, y1 int
	switch c.Anchor {
	case TopRight:
		x1 = bounds.Max.X - c.DX - c.Width
		y1 = bounds.Min.Y + c.DY
	case BottomLeft:
		x1 = bounds.Min.X + c.DX
		y1 = bounds.Max.Y - c.DY - c.Height
	case BottomRight:
		x1 = bounds.Max.X - c.DX - c.Width
		y1 = bounds.Max.Y - c.DY - c.Height
	default: // TopLeft
		x1 = bounds.Min.X + c.DX
		y1 = bounds.Min.Y + c.DY
	}
	return image.Rect(x1, y1, x1+c.Width, y1+c.Height).Intersect(bounds)
}

// Endpoints are the two absolute-temperature values a capture's color scale
// spans, with per-bound flags recording whether the value was imputed after
// a failed recognition.
type Endpoints struct {
	// Lower is the temperature of the scale's cold extreme, in °C.
	Lower float64 `json:"lower"`

	// Upper is the temperature of the scale's hot extreme, in °C. Upper
	// usually exceeds Lower but this is not guaranteed, particularly when
	// either value was imputed.
	Upper float64 `json:"upper"`

	// LowerImputed and UpperImputed are true when the corresponding bound
	// could not be recognized and a fallback was substituted. Downstream
	// consumers can use them to filter suspect records.
	LowerImputed bool `json:"lower_imputed"`
	UpperImputed bool `json:"upper_imputed"`
}

// CalibratorConfig is the injected configuration of a Calibrator: where the
// two scale labels sit and what to substitute when recognition fails.
type CalibratorConfig struct {
	// UpperCrop and LowerCrop locate the printed upper- and lower-bound
	// labels.
	UpperCrop CropSpec `json:"upper_crop" yaml:"upper_crop"`
	LowerCrop CropSpec `json:"lower_crop" yaml:"lower_crop"`

	// UpperSentinel replaces an unrecognizable upper bound. It should be
	// far above any plausible reading so imputed records stand out in
	// downstream analysis rather than passing for real measurements.
	UpperSentinel float64 `json:"upper_sentinel" yaml:"upper_sentinel"`

	// CameraFloor replaces an unrecognizable lower bound. Unlike the upper
	// sentinel this is a physically meaningful default: the camera's
	// documented minimum measurable temperature, at which off-scale-cold
	// pixels legitimately saturate.
	CameraFloor float64 `json:"camera_floor" yaml:"camera_floor"`
}

// DefaultCalibratorConfig returns the layout of the survey camera: the upper
// label in the top-right corner, the lower label in the bottom-right corner,
// a 999 sentinel and a -20 °C sensor floor.
func DefaultCalibratorConfig() CalibratorConfig {
	return CalibratorConfig{
		UpperCrop:     CropSpec{Anchor: TopRight, DX: 4, DY: 4, Width: 48, Height: 16},
		LowerCrop:     CropSpec{Anchor: BottomRight, DX: 4, DY: 4, Width: 48, Height: 16},
		UpperSentinel: 999,
		CameraFloor:   -20,
	}
}

// Calibrator extracts a capture's scale endpoints through a text-recognition
// Reader.
type Calibrator struct {
	reader Reader
	cfg    CalibratorConfig
}

// NewCalibrator builds a Calibrator around a Reader and its configuration.
func NewCalibrator(reader Reader, cfg CalibratorConfig) *Calibrator {
	return &Calibrator{reader: reader, cfg: cfg}
}

// Endpoints recognizes and parses both scale labels of a capture.
//
// Recognition failures and unparsable strings never fail the call: each
// bound is imputed independently (sentinel for the upper, camera floor for
// the lower) and flagged. The only returned error is the context's, when the
// caller's deadline cuts a recognition short.
func (c *Calibrator) Endpoints(ctx context.Context, img image.Image) (Endpoints, error) {
	bounds := img.Bounds()

	upper, upperOK, err := c.readBound(ctx, img, c.cfg.UpperCrop.Rect(bounds))
	if err != nil {
		return Endpoints{}, err
	}
	lower, lowerOK, err := c.readBound(ctx, img, c.cfg.LowerCrop.Rect(bounds))
	if err != nil {
		return Endpoints{}, err
	}

	ep := Endpoints{Lower: lower, Upper: upper}
	if !upperOK {
		ep.Upper = c.cfg.UpperSentinel
		ep.UpperImputed = true
	}
	if !lowerOK {
		ep.Lower = c.cfg.CameraFloor
		ep.LowerImputed = true
	}
	return ep, nil
}

// readBound recognizes one label region and attempts the numeric parse.
// Reader failures other than context cancellation count as unparsable.
func (c *Calibrator) readBound(ctx context.Context, img image.Image, region image.Rectangle) (float64, bool, error) {
	text, err := c.reader.ReadRegion(ctx, img, region)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		return 0, false, nil
	}
	value, ok := parseReading(text)
	return value, ok, nil
}

// parseReading validates a recognized string as a temperature value after
// trimming whitespace.
func parseReading(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
