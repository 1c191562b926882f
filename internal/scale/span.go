package scale

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// MeasureSpan measures the intensity range a capture's scale bar actually
// covers, for calibrating the Mapper span without relying on a hard-coded
// constant.
//
// The bar region is sampled pixel by pixel and the spread of perceptual
// lightness (CIE Lab L, which tracks how a false-color palette reads as
// brightness better than raw channel values) is scaled to the 0-255
// intensity range.
//
// Returns 0 when the region is empty or holds no opaque pixels; callers
// should treat that as an invalid span.
func MeasureSpan(img image.Image, bar image.Rectangle) float64 {
	region := bar.Intersect(img.Bounds())
	if region.Empty() {
		return 0
	}

	minL, maxL := 1.0, 0.0
	sampled := false
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			if !sampled || l < minL {
				minL = l
			}
			if !sampled || l > maxL {
				maxL = l
			}
			sampled = true
		}
	}
	if !sampled || maxL <= minL {
		return 0
	}
	return (maxL - minL) * 255
}
