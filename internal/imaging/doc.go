// Package imaging prepares raw thermal captures for boundary extraction.
//
// The package covers two concerns: loading capture sets from disk through a
// concurrent-safe cache, and reducing a color thermal image to the binary
// foreground/background partition the contour tracer operates on.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
// X increases rightward, Y increases downward. Rectangular regions follow the
// standard image.Rectangle convention (Min inclusive, Max exclusive).
//
// # Determinism
//
// Every processing function is a pure function of its input image and fixed
// parameters. Running the same preparation twice on the same capture yields
// byte-identical output, which downstream boundary extraction relies on.
//
// # Thread Safety
//
// The Cache type is safe for concurrent use. The processing functions are
// stateless and never mutate their input image.
package imaging
