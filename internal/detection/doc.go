// Package detection classifies pixels against a marker color tolerance band
// and groups matches into connected regions.
//
// This is the first stage of the constraint-zone pipeline: an operator marks
// a "safe zone" on a product photo with a distinct color, and detection
// finds where that marker is. The stage consumes a decoded image plus a
// Settings snapshot and emits Region values; it performs no I/O and holds no
// state between calls.
//
// # Color Matching
//
// Each pixel is converted to the configured comparison space and matched
// when its normalized distance from the target color is within the
// tolerance band:
//
//   - SpaceLab (default): CIE Lab distance via go-colorful, tracking
//     perceived color difference
//   - SpaceRGB: euclidean distance in RGB
//   - SpaceHSL: weighted hue/saturation/lightness distance with hue
//     wraparound
//
// # Region Grouping
//
// Matching pixels are grouped by BFS flood fill over a flat row-major
// buffer, with 4- or 8-connectivity. Components below the MinRegionPixels
// noise floor are discarded. Surviving regions carry their bounding box,
// pixel count, and centroid.
//
// # Determinism
//
// The scan order and BFS queue order are fixed, so identical input always
// produces an identical region set, including region numbering. Tests rely
// on this.
//
// # Empty Results
//
// Zero regions is a defined terminal condition meaning "no constraint
// marker found". It is returned as an empty slice, not an error; callers
// decide whether that aborts their pipeline.
package detection
