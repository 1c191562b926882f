// Package config holds the injected configuration of the batch pipeline.
//
// Everything a field operator might need to adjust between camera models
// lives here: tessdata location, label crop offsets, imputation fallbacks,
// the calibrated intensity span, and the preprocessing and tolerance-scan
// constants. Nothing in the processing packages reads global state or
// hard-coded paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leighaderango/thermal-images/internal/scale"
)

// Config is the full pipeline configuration. Zero values are not meaningful;
// start from Default and override.
type Config struct {
	// TessdataPrefix overrides the Tesseract training-data directory.
	TessdataPrefix string `yaml:"tessdata_prefix"`

	// Language is the Tesseract language code for the scale labels.
	Language string `yaml:"language"`

	// OCRUpscale is the upscale factor applied to label crops before
	// recognition.
	OCRUpscale float64 `yaml:"ocr_upscale"`

	// Calibrator locates the scale labels and sets the imputation
	// fallbacks.
	Calibrator scale.CalibratorConfig `yaml:"calibrator"`

	// ScaleBar locates the color scale bar itself, used to measure the
	// intensity span when IntensitySpan is 0.
	ScaleBar scale.CropSpec `yaml:"scale_bar"`

	// IntensitySpan is the intensity range the scale bar covers. 0 means
	// measure it from the first capture's scale bar at run start.
	IntensitySpan float64 `yaml:"intensity_span"`

	// FirstBlurRadius, SecondBlurRadius, and Threshold are the
	// binarization constants of the boundary extractor.
	FirstBlurRadius  float64 `yaml:"first_blur_radius"`
	SecondBlurRadius float64 `yaml:"second_blur_radius"`
	Threshold        uint8   `yaml:"threshold"`

	// ToleranceStart, ToleranceStep, and ToleranceCeiling drive the quad
	// approximation scan, as fractions of boundary perimeter.
	ToleranceStart   float64 `yaml:"tolerance_start"`
	ToleranceStep    float64 `yaml:"tolerance_step"`
	ToleranceCeiling float64 `yaml:"tolerance_ceiling"`

	// Workers is the number of captures processed concurrently. Values
	// below 2 select the sequential baseline. Output order is the input
	// order either way.
	Workers int `yaml:"workers"`
}

// Default returns the configuration of the reference survey camera.
func Default() *Config {
	return &Config{
		Language:         "eng",
		OCRUpscale:       4,
		Calibrator:       scale.DefaultCalibratorConfig(),
		ScaleBar:         scale.CropSpec{Anchor: scale.TopRight, DX: 8, DY: 28, Width: 14, Height: 180},
		IntensitySpan:    215,
		FirstBlurRadius:  1.0,
		SecondBlurRadius: 2.0,
		Threshold:        100,
		ToleranceStart:   0.01,
		ToleranceStep:    0.01,
		ToleranceCeiling: 0.15,
		Workers:          1,
	}
}

// Load reads a YAML file over the defaults, so a config file only needs the
// fields it changes.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with. A negative
// intensity span is rejected here; a zero span is allowed because the
// pipeline measures it from the scale bar, which then must be configured.
func (c *Config) Validate() error {
	if c.IntensitySpan < 0 {
		return fmt.Errorf("config: intensity_span must not be negative, got %g", c.IntensitySpan)
	}
	if c.IntensitySpan == 0 && (c.ScaleBar.Width <= 0 || c.ScaleBar.Height <= 0) {
		return fmt.Errorf("config: scale_bar must be set when intensity_span is 0")
	}
	if c.ToleranceStart <= 0 || c.ToleranceStep <= 0 {
		return fmt.Errorf("config: tolerance_start and tolerance_step must be positive")
	}
	if c.ToleranceCeiling < c.ToleranceStart {
		return fmt.Errorf("config: tolerance_ceiling %g below tolerance_start %g",
			c.ToleranceCeiling, c.ToleranceStart)
	}
	if c.OCRUpscale < 0 {
		return fmt.Errorf("config: ocr_upscale must not be negative, got %g", c.OCRUpscale)
	}
	return nil
}
