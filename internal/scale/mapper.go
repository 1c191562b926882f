package scale

import "errors"

// ErrInvalidSpan reports a non-positive calibrated intensity span. This is a
// systemic configuration bug, not a per-image condition, and must abort the
// whole run.
var ErrInvalidSpan = errors.New("scale: calibrated intensity span must be positive")

// Mapper converts mean region intensity to absolute temperature by linear
// interpolation between a capture's scale endpoints.
//
// The span is the intensity range the printed scale bar actually covers on
// this camera, which is narrower than the theoretical 0-255: the bar's
// darkest rendered pixel is not pure black nor its brightest pure white.
type Mapper struct {
	span float64
}

// NewMapper validates the calibrated span and builds a Mapper.
// A non-positive span returns ErrInvalidSpan.
func NewMapper(span float64) (*Mapper, error) {
	if span <= 0 {
		return nil, ErrInvalidSpan
	}
	return &Mapper{span: span}, nil
}

// Span returns the calibrated intensity span.
func (m *Mapper) Span() float64 {
	return m.span
}

// Temperature maps a mean intensity to °C:
//
//	temperature = (intensity / span) * (upper - lower) + lower
//
// Intensity 0 maps exactly to the lower bound and intensity equal to the
// span maps exactly to the upper bound. The mapping is applied as-is to
// imputed endpoints; callers that care must check the Endpoints flags.
func (m *Mapper) Temperature(intensity float64, ep Endpoints) float64 {
	return intensity/m.span*(ep.Upper-ep.Lower) + ep.Lower
}
