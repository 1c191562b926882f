package scale

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Reader is the text-recognition collaborator: given an image region, it
// returns a best-effort string. Implementations may return empty or garbage
// strings; the Calibrator validates every result by numeric parse.
type Reader interface {
	ReadRegion(ctx context.Context, img image.Image, region image.Rectangle) (string, error)
}

// TesseractReader recognizes scale-label text with the Tesseract engine via
// gosseract.
//
// The zero value is usable: it reads English with a digits-only whitelist at
// 4x upscale and the system tessdata location. Set TessdataPrefix when the
// training data lives elsewhere.
type TesseractReader struct {
	// TessdataPrefix overrides the engine's training-data directory.
	// Empty means the system default.
	TessdataPrefix string

	// Language is the Tesseract language code. Empty means "eng".
	Language string

	// Upscale is the factor applied to the crop before recognition; the
	// scale labels are only a dozen pixels tall on a raw capture. Values
	// below 1 disable upscaling. Zero means 4.
	Upscale float64
}

// whitelist restricts recognition to characters that can appear in a
// temperature label.
const whitelist = "0123456789.-"

// ReadRegion crops the region, upscales it, and runs Tesseract over the
// result.
//
// Tesseract is a blocking native call with no cancellation hook, so the
// recognition runs in its own goroutine and the method returns ctx.Err() as
// soon as the context is done, abandoning the in-flight call. The temporary
// PNG handoff file is removed once recognition finishes either way.
//
// Returns the raw recognized string, untrimmed and unvalidated.
func (r *TesseractReader) ReadRegion(ctx context.Context, img image.Image, region image.Rectangle) (string, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return "", fmt.Errorf("scale: crop region %v outside image bounds %v", region, img.Bounds())
	}

	cropped := imaging.Crop(img, region)

	upscale := r.Upscale
	if upscale == 0 {
		upscale = 4
	}
	if upscale > 1 {
		w := int(float64(cropped.Bounds().Dx()) * upscale)
		h := int(float64(cropped.Bounds().Dy()) * upscale)
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	// Tesseract wants a file path.
	tmpFile, err := os.CreateTemp("", "scale-label-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := png.Encode(tmpFile, cropped); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	type recognition struct {
		text string
		err  error
	}
	done := make(chan recognition, 1)

	go func() {
		defer os.Remove(tmpPath)
		text, err := r.recognize(tmpPath)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

// recognize runs one Tesseract pass over an image file.
func (r *TesseractReader) recognize(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if r.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	language := r.Language
	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	if err := client.SetWhitelist(whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set segmentation mode: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
