// Package mask turns detected marker regions into a clean geometric mask.
//
// This is the second stage of the constraint-zone pipeline. It rasterizes
// the matching regions into a flat binary buffer, cleans the buffer with
// morphological opening and closing, selectively fills small enclosed
// holes, traces component boundaries with Moore-neighbor following, and
// simplifies the resulting contours with Douglas-Peucker. The output Mask
// carries the contour set plus shape-quality metrics (area, perimeter,
// aspect ratio, solidity, compactness).
//
// # Buffers
//
// All pixel processing happens on flat []uint8 buffers indexed y*width+x.
// The binary mask exists only during generation; after contour extraction
// the contours are the single source of truth, and the three export forms
// (raster alpha image, SVG path data, JSON document) are independent
// serializations of that one contour model.
//
// # Winding
//
// With y growing downward, outer contours have positive shoelace area and
// hole contours negative. Exports rely on this to render holes correctly.
//
// # Failure Policy
//
// Mask generation never fails on image content. If nothing survives
// cleanup, the result has zero contours and Validation.IsValid=false.
// Components whose boundary degenerates below a triangle are silently
// discarded. Errors are returned only for invalid configuration, before
// any pixel work starts.
package mask
