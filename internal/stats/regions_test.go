package stats

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/leighaderango/thermal-images/internal/contour"
)

// splitImage builds a 10x10 gray image whose left half is one intensity and
// right half another.
func splitImage(t *testing.T, left, right uint8) *image.Gray {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := left
			if x >= 5 {
				v = right
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestMeanIntensities_SplitImage(t *testing.T) {
	img := splitImage(t, 100, 200)

	// Quad covering exactly the left half.
	quad := []contour.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 10}, {X: 0, Y: 10}}

	means, err := MeanIntensities(img, quad)
	if err != nil {
		t.Fatalf("MeanIntensities failed: %v", err)
	}

	if means.InnerCount != 50 {
		t.Errorf("inner count: got %d, want 50", means.InnerCount)
	}
	if means.OuterCount != 50 {
		t.Errorf("outer count: got %d, want 50", means.OuterCount)
	}
	if math.Abs(means.Inner-100) > 1e-9 {
		t.Errorf("inner mean: got %.3f, want 100", means.Inner)
	}
	if math.Abs(means.Outer-200) > 1e-9 {
		t.Errorf("outer mean: got %.3f, want 200", means.Outer)
	}
}

func TestMeanIntensities_NotQuad(t *testing.T) {
	img := splitImage(t, 100, 200)

	tests := []struct {
		name    string
		polygon []contour.Point
	}{
		{"triangle", []contour.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}}},
		{"pentagon", []contour.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 6, Y: 3}, {X: 5, Y: 6}, {X: 0, Y: 6}}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MeanIntensities(img, tt.polygon); !errors.Is(err, ErrNotQuad) {
				t.Errorf("got %v, want ErrNotQuad", err)
			}
		})
	}
}

func TestMeanIntensities_QuadOutsideImage(t *testing.T) {
	img := splitImage(t, 100, 200)

	// Quad entirely outside the frame: no inner pixels, inner mean 0.
	quad := []contour.Point{{X: 50, Y: 50}, {X: 60, Y: 50}, {X: 60, Y: 60}, {X: 50, Y: 60}}

	means, err := MeanIntensities(img, quad)
	if err != nil {
		t.Fatalf("MeanIntensities failed: %v", err)
	}
	if means.InnerCount != 0 {
		t.Errorf("inner count: got %d, want 0", means.InnerCount)
	}
	if means.Inner != 0 {
		t.Errorf("inner mean for empty region: got %.3f, want 0", means.Inner)
	}
	if means.OuterCount != 100 {
		t.Errorf("outer count: got %d, want 100", means.OuterCount)
	}
}

func TestMask_SquareInterior(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)
	polygon := []contour.Point{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}}

	mask := Mask(bounds, polygon)

	count := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if mask.GrayAt(x, y).Y != 0 {
				count++
			}
		}
	}

	// Pixel centers 2.5..7.5 fall inside [2,8] on both axes.
	if count != 36 {
		t.Errorf("interior pixel count: got %d, want 36", count)
	}
	if mask.GrayAt(5, 5).Y == 0 {
		t.Error("center pixel should be inside the mask")
	}
	if mask.GrayAt(0, 0).Y != 0 {
		t.Error("corner pixel should be outside the mask")
	}
}

func TestMask_DegeneratePolygon(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)

	mask := Mask(bounds, []contour.Point{{X: 2, Y: 2}, {X: 8, Y: 8}})
	for _, v := range mask.Pix {
		if v != 0 {
			t.Fatal("two-point polygon should produce an empty mask")
		}
	}
}
