package detection

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive); (X2, Y2) is the bottom-right
// corner (exclusive), so Width = X2-X1 and Height = Y2-Y1.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Width returns the horizontal extent in pixels.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent in pixels.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Centroid is the center of mass of a region in pixel coordinates.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a maximal connected set of pixels matching the marker color.
//
// Regions are ephemeral: a fresh slice is produced per detection call and
// nothing is shared between calls.
type Region struct {
	// Bounds is the axis-aligned bounding box of the region.
	Bounds Bounds `json:"bounds"`

	// PixelCount is the number of matching pixels in the region.
	PixelCount int `json:"pixel_count"`

	// Centroid is the mean position of the region's pixels.
	Centroid Centroid `json:"centroid"`
}

// LabelMap is the full result of connected-component labeling.
//
// Labels is a flat row-major buffer (index = y*Width + x). Label 0 is
// background; label n > 0 corresponds to Regions[n-1]. Regions are numbered
// in row-major scan order of their first pixel, which makes the labeling
// deterministic: identical image and settings produce an identical map.
type LabelMap struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Labels  []int32  `json:"-"`
	Regions []Region `json:"regions"`
}

// FindRegions detects connected regions of the marker color in an image.
//
// A zero-length result is a defined terminal condition, not an error: it
// means no constraint marker was found and the downstream mask pipeline
// must not run.
//
// Returns an error only for invalid settings (wrapping ErrInvalidSettings).
func FindRegions(img image.Image, s Settings) ([]Region, error) {
	lm, err := Label(img, s)
	if err != nil {
		return nil, err
	}
	return lm.Regions, nil
}

// Label classifies every pixel against the configured color tolerance band
// and groups matches into connected regions.
//
// # Algorithm
//
//  1. Classification: each pixel is converted to the comparison color space
//     and matched when its normalized distance from the target is at most
//     TolerancePercent/100. Fully transparent pixels never match.
//  2. Labeling: BFS flood fill over the flat match buffer groups matching
//     pixels into 4- or 8-connected components.
//  3. Noise floor: components with fewer than MinRegionPixels pixels are
//     relabeled to background.
//  4. Statistics: bounding box, pixel count, and centroid per survivor.
//
// The scan is row-major and the BFS queue order is fixed, so the output is
// bit-for-bit reproducible for identical inputs.
func Label(img image.Image, s Settings) (*LabelMap, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	match := classify(img, s)

	labels := make([]int32, width*height)
	var stats []regionStats

	offsets := neighborOffsets(s.connectivity())
	queue := make([]int, 0, 1024)
	next := int32(0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if match[idx] == 0 || labels[idx] != 0 {
				continue
			}

			next++
			labels[idx] = next
			st := regionStats{minX: x, minY: y, maxX: x, maxY: y}

			queue = queue[:0]
			queue = append(queue, idx)
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cx := cur % width
				cy := cur / width

				st.count++
				st.sumX += cx
				st.sumY += cy
				if cx < st.minX {
					st.minX = cx
				}
				if cx > st.maxX {
					st.maxX = cx
				}
				if cy < st.minY {
					st.minY = cy
				}
				if cy > st.maxY {
					st.maxY = cy
				}

				for _, off := range offsets {
					nx := cx + off[0]
					ny := cy + off[1]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					ni := ny*width + nx
					if match[ni] != 0 && labels[ni] == 0 {
						labels[ni] = next
						queue = append(queue, ni)
					}
				}
			}

			stats = append(stats, st)
		}
	}

	// Drop components below the noise floor and compact the label space.
	remap := make([]int32, len(stats)+1)
	regions := make([]Region, 0, len(stats))
	kept := int32(0)
	for i, st := range stats {
		if st.count < s.MinRegionPixels {
			remap[i+1] = 0
			continue
		}
		kept++
		remap[i+1] = kept
		regions = append(regions, Region{
			Bounds:     Bounds{X1: st.minX, Y1: st.minY, X2: st.maxX + 1, Y2: st.maxY + 1},
			PixelCount: st.count,
			Centroid: Centroid{
				X: float64(st.sumX) / float64(st.count),
				Y: float64(st.sumY) / float64(st.count),
			},
		})
	}
	if kept != int32(len(stats)) {
		for i, l := range labels {
			if l != 0 {
				labels[i] = remap[l]
			}
		}
	}

	return &LabelMap{
		Width:   width,
		Height:  height,
		Labels:  labels,
		Regions: regions,
	}, nil
}

// regionStats accumulates per-component statistics during labeling.
type regionStats struct {
	count                  int
	minX, minY, maxX, maxY int
	sumX, sumY             int
}

// neighborOffsets returns the adjacency offsets for the given connectivity.
// The order is fixed to keep the BFS traversal deterministic.
func neighborOffsets(connectivity int) [][2]int {
	if connectivity == 4 {
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	}
	return [][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	}
}

// classify builds the flat match buffer: 1 where the pixel falls inside the
// tolerance band, 0 elsewhere.
func classify(img image.Image, s Settings) []uint8 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	match := make([]uint8, width*height)
	threshold := s.TolerancePercent / 100.0
	dist := distanceFunc(s)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			if a == 0 {
				continue
			}
			if dist(uint8(r>>8), uint8(g>>8), uint8(b>>8)) <= threshold {
				match[y*width+x] = 1
			}
		}
	}
	return match
}

// distanceFunc returns the normalized (0..~1) color distance function for
// the configured comparison space, with the target color precomputed.
func distanceFunc(s Settings) func(r, g, b uint8) float64 {
	target := colorful.Color{
		R: float64(s.Target.R) / 255.0,
		G: float64(s.Target.G) / 255.0,
		B: float64(s.Target.B) / 255.0,
	}

	switch s.space() {
	case SpaceRGB:
		return func(r, g, b uint8) float64 {
			dr := float64(r)/255.0 - target.R
			dg := float64(g)/255.0 - target.G
			db := float64(b)/255.0 - target.B
			return math.Sqrt(dr*dr+dg*dg+db*db) / math.Sqrt(3)
		}
	case SpaceHSL:
		th, ts, tl := target.Hsl()
		return func(r, g, b uint8) float64 {
			c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
			h, sat, l := c.Hsl()
			dh := math.Abs(h - th)
			if dh > 180 {
				dh = 360 - dh
			}
			// Hue dominates: the marker is identified by its hue band,
			// saturation and lightness absorb shading and anti-aliasing.
			return 0.6*(dh/180.0) + 0.2*math.Abs(sat-ts) + 0.2*math.Abs(l-tl)
		}
	default: // SpaceLab
		return func(r, g, b uint8) float64 {
			c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
			return c.DistanceLab(target)
		}
	}
}
