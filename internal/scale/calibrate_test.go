package scale

import (
	"context"
	"errors"
	"image"
	"testing"
)

// stubReader answers with a fixed string per label position: regions in the
// top half of the image get the upper string, the rest the lower one.
type stubReader struct {
	upper string
	lower string
	err   error
}

func (s *stubReader) ReadRegion(ctx context.Context, img image.Image, region image.Rectangle) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if region.Min.Y < img.Bounds().Dy()/2 {
		return s.upper, nil
	}
	return s.lower, nil
}

func testCapture() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 120, 160))
}

func TestCalibrator_Endpoints(t *testing.T) {
	cal := NewCalibrator(&stubReader{upper: "40", lower: "-20"}, DefaultCalibratorConfig())

	ep, err := cal.Endpoints(context.Background(), testCapture())
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}

	if ep.Upper != 40 || ep.Lower != -20 {
		t.Errorf("endpoints: got (%g, %g), want (-20, 40)", ep.Lower, ep.Upper)
	}
	if ep.UpperImputed || ep.LowerImputed {
		t.Errorf("clean readings should not be flagged: %+v", ep)
	}
}

func TestCalibrator_TrimsWhitespace(t *testing.T) {
	cal := NewCalibrator(&stubReader{upper: " 37.5\n", lower: "\t-12.0 "}, DefaultCalibratorConfig())

	ep, err := cal.Endpoints(context.Background(), testCapture())
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	if ep.Upper != 37.5 || ep.Lower != -12 {
		t.Errorf("endpoints: got (%g, %g), want (-12, 37.5)", ep.Lower, ep.Upper)
	}
}

func TestCalibrator_ImputesUnparsableBounds(t *testing.T) {
	tests := []struct {
		name         string
		upper, lower string
		wantUpper    float64
		wantLower    float64
		upperImputed bool
		lowerImputed bool
	}{
		{"both garbage", "4O", "", 999, -20, true, true},
		{"upper only", "..", "-18", 999, -18, true, false},
		{"lower only", "35", "none", 35, -20, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := NewCalibrator(&stubReader{upper: tt.upper, lower: tt.lower}, DefaultCalibratorConfig())

			ep, err := cal.Endpoints(context.Background(), testCapture())
			if err != nil {
				t.Fatalf("Endpoints failed: %v", err)
			}
			if ep.Upper != tt.wantUpper || ep.Lower != tt.wantLower {
				t.Errorf("endpoints: got (%g, %g), want (%g, %g)",
					ep.Lower, ep.Upper, tt.wantLower, tt.wantUpper)
			}
			if ep.UpperImputed != tt.upperImputed || ep.LowerImputed != tt.lowerImputed {
				t.Errorf("imputation flags: got (upper=%v, lower=%v), want (upper=%v, lower=%v)",
					ep.UpperImputed, ep.LowerImputed, tt.upperImputed, tt.lowerImputed)
			}
		})
	}
}

func TestCalibrator_ReaderErrorImputes(t *testing.T) {
	cal := NewCalibrator(&stubReader{err: errors.New("engine unavailable")}, DefaultCalibratorConfig())

	ep, err := cal.Endpoints(context.Background(), testCapture())
	if err != nil {
		t.Fatalf("a reader failure should impute, not fail: %v", err)
	}
	if !ep.UpperImputed || !ep.LowerImputed {
		t.Errorf("both bounds should be flagged imputed: %+v", ep)
	}
	if ep.Upper != 999 || ep.Lower != -20 {
		t.Errorf("endpoints: got (%g, %g), want (-20, 999)", ep.Lower, ep.Upper)
	}
}

func TestCalibrator_ContextCancellation(t *testing.T) {
	cal := NewCalibrator(&stubReader{upper: "40", lower: "-20"}, DefaultCalibratorConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cal.Endpoints(ctx, testCapture()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestCropSpec_Rect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 200)

	tests := []struct {
		name string
		spec CropSpec
		want image.Rectangle
	}{
		{
			"top-right",
			CropSpec{Anchor: TopRight, DX: 4, DY: 4, Width: 48, Height: 16},
			image.Rect(48, 4, 96, 20),
		},
		{
			"bottom-right",
			CropSpec{Anchor: BottomRight, DX: 4, DY: 4, Width: 48, Height: 16},
			image.Rect(48, 180, 96, 196),
		},
		{
			"top-left",
			CropSpec{Anchor: TopLeft, DX: 2, DY: 3, Width: 10, Height: 5},
			image.Rect(2, 3, 12, 8),
		},
		{
			"bottom-left",
			CropSpec{Anchor: BottomLeft, DX: 2, DY: 3, Width: 10, Height: 5},
			image.Rect(2, 192, 12, 197),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Rect(bounds); got != tt.want {
				t.Errorf("Rect(%v) = %v, want %v", bounds, got, tt.want)
			}
		})
	}
}

func TestCropSpec_RectClipsToBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 30, 30)
	spec := CropSpec{Anchor: TopRight, DX: 4, DY: 4, Width: 48, Height: 16}

	got := spec.Rect(bounds)
	if !got.In(bounds) && !got.Empty() {
		t.Errorf("resolved rect %v escapes bounds %v", got, bounds)
	}
}
