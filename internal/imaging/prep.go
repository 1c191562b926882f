package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
)

// PrepParams holds the fixed constants of the binarization chain.
//
// The defaults were tuned against low-resolution thermal captures where the
// window frame reads noticeably colder than the surrounding wall. They are
// injectable so tests can exercise the chain at boundary settings.
type PrepParams struct {
	// FirstBlurRadius is the radius of the initial noise-suppression pass.
	FirstBlurRadius float64

	// SecondBlurRadius is the radius of the stronger pass applied after
	// histogram equalization, before thresholding.
	SecondBlurRadius float64

	// Threshold is the binarization cut: gray values at or above it map to
	// white, values below it map to black.
	Threshold uint8
}

// DefaultPrepParams returns the parameter set used by the batch pipeline.
func DefaultPrepParams() PrepParams {
	return PrepParams{
		FirstBlurRadius:  1.0,
		SecondBlurRadius: 2.0,
		Threshold:        100,
	}
}

// Grayscale converts an image to single-channel intensity using ITU-R BT.601
// luminance weights (0.299*R + 0.587*G + 0.114*B).
//
// The input is never modified; the result is a new *image.Gray with the same
// bounds.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x, y, color.Gray{Y: uint8(lum + 0.5)})
		}
	}
	return gray
}

// Equalize redistributes the intensity histogram of a grayscale image so the
// output spans the full 0-255 range, increasing the separation between
// foreground and background values before thresholding.
//
// The remap uses the cumulative histogram:
//
//	out = 255 * (cdf(v) - cdf_min) / (pixels - cdf_min)
//
// where cdf_min is the cumulative count at the lowest occupied bin. A
// single-valued image has no distribution to stretch and is returned as an
// unmodified copy.
func Equalize(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	out := image.NewGray(bounds)
	if total == 0 {
		return out
	}

	cum := histogram.NewRGBAHistogram(img).R.Cumulative()

	cdfMin := 0
	for _, c := range cum.Bins {
		if c > 0 {
			cdfMin = c
			break
		}
	}
	if total == cdfMin {
		copy(out.Pix, img.Pix)
		return out
	}

	var lut [256]uint8
	denom := float64(total - cdfMin)
	for v := 0; v < 256; v++ {
		scaled := 255.0 * float64(cum.Bins[v]-cdfMin) / denom
		if scaled < 0 {
			scaled = 0
		}
		lut[v] = uint8(scaled + 0.5)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: lut[img.GrayAt(x, y).Y]})
		}
	}
	return out
}

// Binarize reduces a color thermal capture to the two-level image the contour
// tracer operates on. White pixels (255) are foreground, black pixels (0) are
// background.
//
// # Algorithm
//
//  1. Grayscale conversion (BT.601 luminance)
//  2. Gaussian blur at FirstBlurRadius to suppress pixel-level noise
//  3. Histogram equalization to separate foreground from background
//  4. A second, stronger Gaussian blur at SecondBlurRadius
//  5. Threshold: values at or above Threshold become white, below become black
//  6. Inversion, so the colder (darker) window region becomes the white
//     foreground the boundary search expects
//
// The function is pure: the same capture and parameters always produce an
// identical binary image.
func Binarize(img image.Image, p PrepParams) *image.Gray {
	gray := Grayscale(img)
	smoothed := blur.Gaussian(gray, p.FirstBlurRadius)
	equalized := Equalize(Grayscale(smoothed))
	resmoothed := blur.Gaussian(equalized, p.SecondBlurRadius)
	binary := segment.Threshold(resmoothed, p.Threshold)
	return Grayscale(effect.Invert(binary))
}
