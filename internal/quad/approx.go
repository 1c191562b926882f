// Package quad reduces a traced window boundary to a four-vertex outline.
//
// The reduction scans a simplification tolerance, expressed as a fraction of
// the boundary perimeter, from a small starting value upward until the
// simplified polygon has exactly four vertices. Larger tolerances generally
// reduce the vertex count but not strictly monotonically, so the scan accepts
// the first success in increasing order rather than searching for a best one.
package quad

import (
	"fmt"
	"math"

	"github.com/leighaderango/thermal-images/internal/contour"
)

// Params are the injectable constants of the tolerance scan.
type Params struct {
	// Start is the first tolerance fraction tried.
	Start float64

	// Step is added to the fraction after each failed attempt.
	Step float64

	// Ceiling is the largest fraction tried; reaching it without a
	// four-vertex result exhausts the scan.
	Ceiling float64
}

// DefaultParams returns the scan constants used by the batch pipeline:
// start at 1% of the perimeter, step by 1%, give up beyond 15%.
func DefaultParams() Params {
	return Params{Start: 0.01, Step: 0.01, Ceiling: 0.15}
}

// Result is a successful four-vertex approximation.
type Result struct {
	// Vertices are the four corners, in boundary order.
	Vertices []contour.Point `json:"vertices"`

	// ToleranceFraction is the perimeter fraction that produced the quad.
	ToleranceFraction float64 `json:"tolerance_fraction"`

	// History records the vertex count observed at each scan step,
	// including the successful final step.
	History []int `json:"history"`
}

// NoQuadError reports a scan that reached its ceiling without producing a
// simple four-vertex polygon. History carries the vertex count of every
// attempt for diagnosis; non-rectangular or badly off-axis windows typically
// jump from five-plus vertices straight to three.
type NoQuadError struct {
	History []int
	Ceiling float64
}

func (e *NoQuadError) Error() string {
	return fmt.Sprintf("quad: no 4-vertex approximation at tolerance <= %.2f of perimeter (vertex counts %v)",
		e.Ceiling, e.History)
}

// scanState enumerates the bounded-retry states of the tolerance scan.
type scanState int

const (
	stateSearching scanState = iota
	stateSucceeded
	stateExhausted
)

// Approximate finds the first tolerance fraction, scanned in increasing
// order, whose simplification of the boundary yields exactly four vertices
// forming a simple (non-self-intersecting) polygon.
//
// Parameters:
//   - b: A closed boundary enclosing non-zero area, as produced by
//     contour.Largest.
//   - p: Scan constants. Start and Step must be positive and Ceiling must
//     be at least Start.
//
// Returns:
//   - *Result: The quad, the fraction that produced it, and the full
//     vertex-count history.
//   - error: *NoQuadError when the scan exhausts its ceiling, or a plain
//     error for invalid Params.
//
// A four-vertex simplification whose non-adjacent edges cross is counted as
// a failed attempt at that step and the scan continues, so a later, simple
// quad can still succeed.
func Approximate(b contour.Boundary, p Params) (*Result, error) {
	if p.Start <= 0 || p.Step <= 0 || p.Ceiling < p.Start {
		return nil, fmt.Errorf("quad: invalid scan params start=%g step=%g ceiling=%g",
			p.Start, p.Step, p.Ceiling)
	}

	perimeter := b.Perimeter()
	state := stateSearching
	var history []int
	var result *Result

	for attempt := 0; state == stateSearching; attempt++ {
		frac := p.Start + float64(attempt)*p.Step
		if frac > p.Ceiling+1e-9 {
			state = stateExhausted
			break
		}

		vertices := Simplify(b.Points, frac*perimeter)
		history = append(history, len(vertices))

		if len(vertices) == 4 && IsSimple(vertices) {
			state = stateSucceeded
			result = &Result{
				Vertices:          vertices,
				ToleranceFraction: frac,
				History:           history,
			}
		}
	}

	if state != stateSucceeded {
		return nil, &NoQuadError{History: history, Ceiling: p.Ceiling}
	}
	return result, nil
}

// Simplify reduces a closed polyline with the Douglas-Peucker recursive
// point-elimination algorithm: a point survives only if some point between
// two retained anchors deviates from the straight segment between them by
// more than the tolerance (in pixels).
//
// The closed loop is split at the point farthest from the first point, the
// two open chains are simplified independently, and the halves are rejoined.
// The result is again a closed polyline with the closing edge implied.
func Simplify(points []contour.Point, tolerance float64) []contour.Point {
	if len(points) < 3 {
		out := make([]contour.Point, len(points))
		copy(out, points)
		return out
	}

	// Split at the point farthest from the start; both split points are
	// guaranteed to survive, which keeps the loop closed.
	far := 0
	farDist := -1.0
	for i := 1; i < len(points); i++ {
		d := distSq(points[0], points[i])
		if d > farDist {
			farDist = d
			far = i
		}
	}

	chainA := points[:far+1]
	chainB := make([]contour.Point, 0, len(points)-far+1)
	chainB = append(chainB, points[far:]...)
	chainB = append(chainB, points[0])

	simpleA := simplifyOpen(chainA, tolerance)
	simpleB := simplifyOpen(chainB, tolerance)

	// simpleA runs start..far, simpleB runs far..start; drop the shared
	// endpoints when splicing.
	out := make([]contour.Point, 0, len(simpleA)+len(simpleB)-2)
	out = append(out, simpleA...)
	out = append(out, simpleB[1:len(simpleB)-1]...)
	return out
}

// simplifyOpen applies Douglas-Peucker to an open chain, always retaining
// both endpoints.
func simplifyOpen(points []contour.Point, tolerance float64) []contour.Point {
	if len(points) < 3 {
		out := make([]contour.Point, len(points))
		copy(out, points)
		return out
	}

	a := points[0]
	b := points[len(points)-1]
	maxDist := -1.0
	maxIdx := -1
	for i := 1; i < len(points)-1; i++ {
		d := lineDistance(points[i], a, b)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return []contour.Point{a, b}
	}

	left := simplifyOpen(points[:maxIdx+1], tolerance)
	right := simplifyOpen(points[maxIdx:], tolerance)

	out := make([]contour.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

// IsSimple reports whether a four-vertex polygon is simple: neither pair of
// non-adjacent edges intersects. Polygons with any other vertex count are
// rejected outright, as are quads with repeated vertices.
func IsSimple(polygon []contour.Point) bool {
	if len(polygon) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if polygon[i] == polygon[j] {
				return false
			}
		}
	}
	// Edges: 0-1, 1-2, 2-3, 3-0. Non-adjacent pairs share no vertex.
	if segmentsIntersect(polygon[0], polygon[1], polygon[2], polygon[3]) {
		return false
	}
	if segmentsIntersect(polygon[1], polygon[2], polygon[3], polygon[0]) {
		return false
	}
	return true
}

// segmentsIntersect reports whether segments p1-p2 and q1-q2 share any
// point, including collinear overlap and endpoint touching.
func segmentsIntersect(p1, p2, q1, q2 contour.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c contour.Point) int {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment reports whether collinear point p lies within the bounding box
// of segment a-b.
func onSegment(a, b, p contour.Point) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// lineDistance returns the perpendicular distance from p to the infinite
// line through a and b, or the Euclidean distance to a when the anchors
// coincide.
func lineDistance(p, a, b contour.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	norm := math.Sqrt(dx*dx + dy*dy)
	if norm == 0 {
		return math.Sqrt(distSq(a, p))
	}
	return math.Abs(dx*float64(p.Y-a.Y)-dy*float64(p.X-a.X)) / norm
}

func distSq(a, b contour.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy
}
