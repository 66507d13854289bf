// Package pipeline chains the full marked-zone analysis: image
// normalization, marker color detection, mask generation, and placement
// validation in one call.
//
// # Stages
//
//	preprocess -> detection.Label -> mask.GenerateFromLabels -> constraint.Validate
//
// Preprocessing optionally downscales large inputs and applies a light
// Gaussian blur so sensor noise does not fragment the marker region. All
// downstream coordinates are in the working image; Result.Scale maps them
// back to the original.
//
// # Errors
//
// Run returns an error for invalid configuration and for an image with no
// marker region (ErrNoMarker). A mask that fails placement requirements is
// a normal result, reported through Result.Validation.
package pipeline
