package mask

import (
	"math"
	"sort"
)

// Metrics describes the shape quality of a generated mask.
//
// Area and Perimeter are in pixel units. Solidity and Compactness are
// normalized to (0,1]; Compactness is 1.0 for a perfect circle.
type Metrics struct {
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	AspectRatio float64 `json:"aspect_ratio"`
	Solidity    float64 `json:"solidity"`
	Compactness float64 `json:"compactness"`
}

// SignedArea returns the shoelace area of the contour. With y growing
// downward, outer contours are positive and holes negative.
func (c Contour) SignedArea() float64 {
	return signedArea(c.Points)
}

// Area returns the absolute enclosed area of the contour.
func (c Contour) Area() float64 {
	return math.Abs(signedArea(c.Points))
}

// Perimeter returns the arc length of the closed contour.
func (c Contour) Perimeter() float64 {
	return polygonPerimeter(c.Points)
}

// computeMetrics derives the shape-quality metrics from the contour set.
// Hole areas are subtracted from the total; hole perimeters count toward
// the total boundary length.
func computeMetrics(contours []Contour) Metrics {
	var m Metrics
	if len(contours) == 0 {
		return m
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var outerPts []Point

	for _, c := range contours {
		a := math.Abs(signedArea(c.Points))
		if c.Hole {
			m.Area -= a
		} else {
			m.Area += a
			outerPts = append(outerPts, c.Points...)
			for _, p := range c.Points {
				minX = math.Min(minX, p.X)
				minY = math.Min(minY, p.Y)
				maxX = math.Max(maxX, p.X)
				maxY = math.Max(maxY, p.Y)
			}
		}
		m.Perimeter += polygonPerimeter(c.Points)
	}
	if m.Area < 0 {
		m.Area = 0
	}

	if maxY > minY {
		m.AspectRatio = (maxX - minX) / (maxY - minY)
	}

	if hull := convexHull(outerPts); len(hull) >= 3 {
		if hullArea := math.Abs(signedArea(hull)); hullArea > 0 {
			m.Solidity = math.Min(1, m.Area/hullArea)
		}
	}

	if m.Perimeter > 0 {
		m.Compactness = math.Min(1, 4*math.Pi*m.Area/(m.Perimeter*m.Perimeter))
	}
	return m
}

// signedArea computes the shoelace formula over a closed point ring.
func signedArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// polygonPerimeter sums edge lengths including the implicit closing edge.
func polygonPerimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
	}
	return sum
}

// convexHull computes the convex hull with Andrew's monotone chain,
// returning vertices in counter-clockwise order. Inputs need not be sorted
// or deduplicated.
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return nil
	}
	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
