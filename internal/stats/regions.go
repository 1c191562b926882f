// Package stats computes region intensity statistics over an approximated
// window outline.
package stats

import (
	"errors"
	"image"
	"image/color"
	"sort"

	"github.com/leighaderango/thermal-images/internal/contour"
)

// ErrNotQuad is returned when the polygon handed to MeanIntensities does not
// have exactly four vertices. Failed approximations must never reach the
// statistics step.
var ErrNotQuad = errors.New("stats: polygon must have exactly 4 vertices")

// RegionMeans holds the mean single-channel intensity inside and outside a
// window outline, over the same image frame.
type RegionMeans struct {
	// Inner is the mean gray intensity of pixels inside the outline.
	Inner float64 `json:"inner"`

	// Outer is the mean gray intensity of pixels outside the outline.
	Outer float64 `json:"outer"`

	// InnerCount and OuterCount are the pixel populations of each region.
	// A region with zero population reports a mean of 0.
	InnerCount int `json:"inner_count"`
	OuterCount int `json:"outer_count"`
}

// MeanIntensities rasterizes the quad's interior into a binary mask and
// averages the gray image under the mask ("inner") and under its complement
// ("outer").
//
// Parameters:
//   - img: Single-channel intensity image, typically imaging.Grayscale of
//     the original capture (not the binarized version).
//   - polygon: The four-vertex outline from quad.Approximate, in image
//     coordinates.
//
// Returns:
//   - *RegionMeans: Means and pixel counts for both regions.
//   - error: ErrNotQuad unless the polygon has exactly four vertices.
func MeanIntensities(img *image.Gray, polygon []contour.Point) (*RegionMeans, error) {
	if len(polygon) != 4 {
		return nil, ErrNotQuad
	}

	bounds := img.Bounds()
	mask := Mask(bounds, polygon)

	var innerSum, outerSum float64
	var innerCount, outerCount int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(img.GrayAt(x, y).Y)
			if mask.GrayAt(x, y).Y != 0 {
				innerSum += v
				innerCount++
			} else {
				outerSum += v
				outerCount++
			}
		}
	}

	means := &RegionMeans{InnerCount: innerCount, OuterCount: outerCount}
	if innerCount > 0 {
		means.Inner = innerSum / float64(innerCount)
	}
	if outerCount > 0 {
		means.Outer = outerSum / float64(outerCount)
	}
	return means, nil
}

// Mask rasterizes a polygon's interior into a binary image over the given
// bounds: interior pixels are 255, everything else 0.
//
// Filling uses even-odd scanline crossing against pixel centers, so a pixel
// belongs to the interior when its center lies inside the polygon. The
// polygon is treated as closed (last vertex connects back to the first).
func Mask(bounds image.Rectangle, polygon []contour.Point) *image.Gray {
	mask := image.NewGray(bounds)
	n := len(polygon)
	if n < 3 {
		return mask
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		cy := float64(y) + 0.5

		var crossings []float64
		for i := 0; i < n; i++ {
			p := polygon[i]
			q := polygon[(i+1)%n]
			y1, y2 := float64(p.Y), float64(q.Y)
			if (y1 > cy) == (y2 > cy) {
				continue
			}
			x := float64(p.X) + (cy-y1)*float64(q.X-p.X)/(y2-y1)
			crossings = append(crossings, x)
		}
		if len(crossings) < 2 {
			continue
		}
		sort.Float64s(crossings)

		for i := 0; i+1 < len(crossings); i += 2 {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				cx := float64(x) + 0.5
				if cx >= crossings[i] && cx <= crossings[i+1] {
					mask.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	}
	return mask
}
