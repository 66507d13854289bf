// Package constraint validates a generated mask against placement
// requirements and ranks candidate placement zones inside it.
//
// # Checks
//
// Validate applies the configured requirements in a fixed order: minimum
// area, contiguity, edge margin, then zone feasibility. Each violated
// requirement becomes an Issue with a severity, a description, and a
// suggestion; errors make the result invalid, warnings only lower
// confidence.
//
// # Zones
//
// Candidate zones are the largest axis-aligned rectangles inscribed in each
// connected allowed area of the mask, after the edge margin band is
// excluded. Every zone carries a quality score in [0,1] and a suggested
// logo size; zones are returned best first.
//
// # Errors
//
// Infeasible placement is not an error. The error return of Validate fires
// only for malformed input, wrapping ErrInvalidRequirements.
package constraint
