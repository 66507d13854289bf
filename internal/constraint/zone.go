package constraint

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"zonemask/internal/mask"
)

// Rect is an axis-aligned pixel rectangle: X,Y is the top-left pixel and
// Width,Height the extent in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Zone is a candidate placement rectangle inside the validated mask.
type Zone struct {
	ID     string     `json:"id"`
	Region Rect       `json:"region"`
	Center mask.Point `json:"center"`

	// Quality scores the zone in [0,1]: a weighted blend of relative area,
	// aspect closeness, and edge clearance, discounted per restriction.
	Quality float64 `json:"quality"`

	// SuggestedLogoSize is the recommended overlay size inside the zone.
	SuggestedLogoSize Size `json:"suggested_logo_size"`

	// Restrictions lists conditions that limit how the zone can be used.
	Restrictions []string `json:"restrictions,omitempty"`
}

// zoneQualityWeights blend the zone score components: relative area
// dominates, then aspect fit, then edge clearance. Tunable; the quantified
// pipeline scenarios in the tests pin the acceptable range.
var zoneQualityWeights = []float64{0.5, 0.3, 0.2}

// placementZones computes ranked candidate rectangles for a mask.
//
// The contour set is rasterized to an allowed-pixel grid (inside the mask,
// outside the edge margin, holes excluded by even-odd parity), the grid is
// split into connected candidate areas, and the largest inscribed
// axis-aligned rectangle of each area becomes a zone. Zones are returned
// sorted by quality, best first.
func placementZones(m *mask.Mask, reqs Requirements, maskArea float64) []Zone {
	allowed := rasterizeAllowed(m, reqs.Position.MarginFromEdges)
	comps := connectedAreas(allowed, m.Width, m.Height)

	zones := make([]Zone, 0, len(comps))
	for _, comp := range comps {
		r := largestRectangle(comp, m.Width, m.Height)
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		z := buildZone(r, m, reqs, maskArea)
		zones = append(zones, z)
	}

	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Quality != zones[j].Quality {
			return zones[i].Quality > zones[j].Quality
		}
		return zones[i].ID < zones[j].ID
	})
	for i := range zones {
		zones[i].ID = fmt.Sprintf("zone-%d", i+1)
	}
	return zones
}

// buildZone scores one inscribed rectangle and derives its suggested logo
// size and restrictions.
func buildZone(r Rect, m *mask.Mask, reqs Requirements, maskArea float64) Zone {
	var restrictions []string

	rectArea := float64(r.Width * r.Height)
	areaRatio := 1.0
	if maskArea > 0 {
		areaRatio = math.Min(1, rectArea/maskArea)
	}

	target := reqs.LogoPlacement.AspectRatio
	if target <= 0 {
		target = 1
	}
	aspect := float64(r.Width) / float64(r.Height)
	aspectScore := math.Min(aspect, target) / math.Max(aspect, target)

	// Edge clearance: distance from the zone to the image boundary,
	// normalized against 5% of the short image side.
	minDist := math.Min(
		math.Min(float64(r.X), float64(r.Y)),
		math.Min(float64(m.Width-r.X-r.Width), float64(m.Height-r.Y-r.Height)),
	)
	clearance := float64(reqs.Position.MarginFromEdges)
	if minDist <= clearance {
		restrictions = append(restrictions, "zone sits directly on the edge margin")
	}
	norm := 0.05 * math.Min(float64(m.Width), float64(m.Height))
	edgeScore := 1.0
	if norm > 0 {
		edgeScore = math.Max(0, math.Min(1, minDist/norm))
	}

	quality := stat.Mean([]float64{areaRatio, aspectScore, edgeScore}, zoneQualityWeights)

	size, fits := suggestLogoSize(r, reqs)
	if !fits {
		restrictions = append(restrictions, fmt.Sprintf(
			"minimum logo size %gx%g does not fit",
			reqs.LogoPlacement.MinLogoSize.Width, reqs.LogoPlacement.MinLogoSize.Height))
		// An infeasible zone is nearly worthless regardless of its shape.
		quality *= 0.1
	}
	quality -= 0.05 * float64(len(restrictions))
	quality = math.Max(0, math.Min(1, quality))

	return Zone{
		Region: r,
		Center: mask.Point{
			X: float64(r.X) + float64(r.Width)/2,
			Y: float64(r.Y) + float64(r.Height)/2,
		},
		Quality:           quality,
		SuggestedLogoSize: size,
		Restrictions:      restrictions,
	}
}

// suggestLogoSize picks the smallest logo size that satisfies the minimum
// in both dimensions while preserving the relevant aspect ratio: the logo's
// own ratio when supplied, otherwise the zone rectangle's. The size is
// capped to the rectangle; fits reports whether the minimum still holds
// after capping.
func suggestLogoSize(r Rect, reqs Requirements) (Size, bool) {
	min := reqs.LogoPlacement.MinLogoSize
	aspect := reqs.LogoPlacement.AspectRatio
	if aspect <= 0 {
		aspect = float64(r.Width) / float64(r.Height)
	}

	w := min.Width
	if min.Height*aspect > w {
		w = min.Height * aspect
	}
	if w <= 0 {
		w = float64(r.Width)
	}
	h := w / aspect

	fits := true
	if w > float64(r.Width) || h > float64(r.Height) {
		scale := math.Min(float64(r.Width)/w, float64(r.Height)/h)
		w *= scale
		h *= scale
		fits = w >= min.Width && h >= min.Height
	}
	return Size{Width: w, Height: h}, fits
}

// rasterizeAllowed marks the pixels available for placement: inside the
// contour set by even-odd scanline parity and at least margin away from
// every image edge. Flat buffer, index = y*width + x.
func rasterizeAllowed(m *mask.Mask, margin int) []uint8 {
	allowed := make([]uint8, m.Width*m.Height)

	type edge struct{ ax, ay, bx, by float64 }
	var edges []edge
	for _, c := range m.Contours {
		n := len(c.Points)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a := c.Points[i]
			b := c.Points[(i+1)%n]
			edges = append(edges, edge{a.X, a.Y, b.X, b.Y})
		}
	}
	if len(edges) == 0 {
		return allowed
	}

	xs := make([]float64, 0, 16)
	for y := margin; y < m.Height-margin; y++ {
		fy := float64(y)
		xs = xs[:0]
		for _, e := range edges {
			if (e.ay > fy) == (e.by > fy) {
				continue
			}
			xs = append(xs, e.ax+(fy-e.ay)*(e.bx-e.ax)/(e.by-e.ay))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x1 := int(math.Ceil(xs[i] - 1e-9))
			x2 := int(math.Floor(xs[i+1] + 1e-9))
			if x1 < margin {
				x1 = margin
			}
			if x2 > m.Width-1-margin {
				x2 = m.Width - 1 - margin
			}
			for x := x1; x <= x2; x++ {
				allowed[y*m.Width+x] = 1
			}
		}
	}
	return allowed
}

// connectedAreas splits the allowed grid into 4-connected candidate areas.
func connectedAreas(allowed []uint8, w, h int) [][]uint8 {
	visited := make([]uint8, len(allowed))
	var comps [][]uint8
	queue := make([]int, 0, 1024)

	for start := range allowed {
		if allowed[start] == 0 || visited[start] != 0 {
			continue
		}
		member := make([]uint8, len(allowed))
		queue = queue[:0]
		queue = append(queue, start)
		visited[start] = 1
		member[start] = 1

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cx := cur % w
			cy := cur / w
			for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx := cx + off[0]
				ny := cy + off[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if allowed[ni] != 0 && visited[ni] == 0 {
					visited[ni] = 1
					member[ni] = 1
					queue = append(queue, ni)
				}
			}
		}
		comps = append(comps, member)
	}
	return comps
}

// largestRectangle finds the largest axis-aligned rectangle of set pixels
// using the row-histogram method: each row closes a largest-rectangle-in-
// histogram problem solved with a monotonic stack, O(w*h) overall.
func largestRectangle(member []uint8, w, h int) Rect {
	heights := make([]int, w)
	var best Rect
	bestArea := 0

	// stack entries are column indices with increasing heights
	stack := make([]int, 0, w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if member[y*w+x] != 0 {
				heights[x]++
			} else {
				heights[x] = 0
			}
		}

		stack = stack[:0]
		for x := 0; x <= w; x++ {
			cur := 0
			if x < w {
				cur = heights[x]
			}
			for len(stack) > 0 && heights[stack[len(stack)-1]] >= cur {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				height := heights[top]
				left := 0
				if len(stack) > 0 {
					left = stack[len(stack)-1] + 1
				}
				width := x - left
				if area := width * height; area > bestArea {
					bestArea = area
					best = Rect{X: left, Y: y - height + 1, Width: width, Height: height}
				}
			}
			stack = append(stack, x)
		}
	}
	return best
}
