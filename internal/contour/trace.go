// Package contour extracts closed region boundaries from binary images.
//
// A boundary is an ordered, closed sequence of pixel coordinates tracing the
// outer perimeter of a connected white (foreground) region. Tracing uses
// Moore-neighbor following with 8-connectivity, so diagonal runs of pixels
// belong to one region.
package contour

import (
	"errors"
	"image"
	"math"
)

// ErrNoBoundary is returned when a binary image contains no boundary that
// encloses area: either the image holds only one level (nothing separates
// foreground from background) or every foreground region is degenerate.
var ErrNoBoundary = errors.New("contour: no boundary found in binary image")

// Point is a 2D pixel coordinate.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Boundary is the ordered outer perimeter of one connected foreground region.
//
// Points form a closed loop: the edge from the last point back to the first
// is implied. Area is the enclosed area computed from the loop itself
// (shoelace formula), not the region's pixel count.
type Boundary struct {
	Points []Point `json:"points"`
	Area   float64 `json:"area"`
}

// Perimeter returns the length of the closed boundary polyline, including
// the implied closing edge.
func (b Boundary) Perimeter() float64 {
	n := len(b.Points)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 0; i < n; i++ {
		p := b.Points[i]
		q := b.Points[(i+1)%n]
		dx := float64(q.X - p.X)
		dy := float64(q.Y - p.Y)
		length += math.Sqrt(dx*dx + dy*dy)
	}
	return length
}

// Largest returns the boundary enclosing maximum area among all foreground
// region boundaries in a binary image.
//
// Parameters:
//   - bin: Two-level image where foreground pixels are >= 128 (white) and
//     background pixels are < 128 (black), as produced by imaging.Binarize.
//
// Returns:
//   - Boundary: The maximum-area boundary. Its Points slice always encloses
//     non-zero area.
//   - error: ErrNoBoundary for degenerate inputs (single-level image, or
//     only isolated pixels and one-pixel-wide strips).
func Largest(bin *image.Gray) (Boundary, error) {
	boundaries := FindAll(bin)

	best := -1
	for i, b := range boundaries {
		if b.Area <= 0 {
			continue
		}
		if best < 0 || b.Area > boundaries[best].Area {
			best = i
		}
	}
	if best < 0 {
		return Boundary{}, ErrNoBoundary
	}
	return boundaries[best], nil
}

// FindAll enumerates the outer boundaries of every connected foreground
// region, in scan order of each region's top-left-most pixel.
//
// A single-level image yields no boundaries: a boundary is a separation
// between the two levels, and with one level present there is nothing to
// separate.
func FindAll(bin *image.Gray) []Boundary {
	bounds := bin.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	fg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= width || y >= height {
			return false
		}
		return bin.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y >= 128
	}

	// Degenerate single-level images have no foreground/background split.
	hasFG, hasBG := false, false
	for y := 0; y < height && !(hasFG && hasBG); y++ {
		for x := 0; x < width; x++ {
			if fg(x, y) {
				hasFG = true
			} else {
				hasBG = true
			}
			if hasFG && hasBG {
				break
			}
		}
	}
	if !hasFG || !hasBG {
		return nil
	}

	seen := make([]bool, width*height)
	var boundaries []Boundary

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg(x, y) || seen[y*width+x] {
				continue
			}
			pts := traceBoundary(fg, x, y, width, height)
			markComponent(fg, seen, x, y, width, height)
			boundaries = append(boundaries, Boundary{
				Points: pts,
				Area:   shoelaceArea(pts),
			})
		}
	}
	return boundaries
}

// moore lists the 8 neighbors of a pixel in clockwise order starting west.
var moore = [8]Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// traceBoundary follows the outer perimeter of the region containing the
// start pixel using Moore-neighbor tracing. The start pixel must be the
// first pixel of its region in row-major scan order, so it is entered from
// the west.
func traceBoundary(fg func(x, y int) bool, startX, startY, width, height int) []Point {
	start := Point{X: startX, Y: startY}
	points := []Point{start}

	p := start
	backtrack := 0 // index into moore of the neighbor we entered from (west)
	var second Point
	haveSecond := false

	// The trace revisits each boundary pixel at most a handful of times;
	// the cap guards against a cycle that never re-enters the start state.
	maxSteps := 4 * (width*height + 1)

	for step := 0; step < maxSteps; step++ {
		found := -1
		for i := 1; i <= 8; i++ {
			idx := (backtrack + i) % 8
			q := Point{X: p.X + moore[idx].X, Y: p.Y + moore[idx].Y}
			if fg(q.X, q.Y) {
				found = idx
				break
			}
		}
		if found < 0 {
			// Isolated pixel: the boundary is the pixel itself.
			return points
		}

		next := Point{X: p.X + moore[found].X, Y: p.Y + moore[found].Y}
		if haveSecond && p == start && next == second {
			// About to repeat the opening move of the trace: loop closed.
			break
		}
		if !haveSecond {
			second = next
			haveSecond = true
		}

		// New backtrack points from next back toward the last background
		// neighbor examined, which sits one clockwise slot before found.
		prev := Point{X: p.X + moore[(found+7)%8].X, Y: p.Y + moore[(found+7)%8].Y}
		backtrack = neighborIndex(next, prev)

		p = next
		points = append(points, p)
	}

	// The closing step lands back on the start pixel; drop the duplicate.
	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

// neighborIndex returns the moore index of neighbor q relative to p.
// Falls back to west if q is not adjacent (never happens for valid traces).
func neighborIndex(p, q Point) int {
	for i, d := range moore {
		if p.X+d.X == q.X && p.Y+d.Y == q.Y {
			return i
		}
	}
	return 0
}

// markComponent flood-fills the 8-connected region at (x, y) into seen so
// later scan positions skip pixels of an already-traced region.
func markComponent(fg func(x, y int) bool, seen []bool, x, y, width, height int) {
	stack := []Point{{X: x, Y: y}}
	seen[y*width+x] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range moore {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if seen[ny*width+nx] || !fg(nx, ny) {
				continue
			}
			seen[ny*width+nx] = true
			stack = append(stack, Point{X: nx, Y: ny})
		}
	}
}

// shoelaceArea returns the absolute area enclosed by a closed polyline.
func shoelaceArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		p := pts[i]
		q := pts[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}
