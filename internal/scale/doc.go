// Package scale converts a thermal camera's per-image color scale into
// absolute temperature.
//
// Each capture prints the two temperature bounds of its color scale as small
// numeric labels at fixed offsets from the image corners. The Calibrator
// crops those regions, hands them to a text-recognition Reader, and parses
// the results, imputing a fallback when recognition fails. The Mapper then
// converts mean region intensity to temperature by linear interpolation over
// the calibrated intensity span of the scale bar.
//
// The text-recognition engine is treated as an unreliable black box: its
// output may be empty or malformed and is always validated by an attempted
// numeric parse. The two imputation fallbacks deliberately differ in
// character. A missing lower bound is physically explainable (off-scale-cold
// pixels saturate at the camera's floor), so the documented sensor floor is
// substituted. A missing upper bound is not, so a visibly anomalous sentinel
// is substituted instead of a plausible-looking default.
package scale
