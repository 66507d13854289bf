package mask

import "math"

// simplifyContour reduces a closed contour's point count with the
// Douglas-Peucker algorithm, bounding the shape error by epsilon (maximum
// perpendicular deviation in pixels).
//
// epsilon <= 0 is a no-op. Increasing epsilon never increases the resulting
// point count for the same input: the contour is split at the vertex
// farthest from the first vertex, a choice independent of epsilon, and
// Douglas-Peucker itself is monotonic in epsilon on each half.
func simplifyContour(pts []Point, epsilon float64) []Point {
	if epsilon <= 0 || len(pts) < 4 {
		return pts
	}

	// Split the closed ring into two open polylines anchored at stable
	// extremes, so the implicit closing edge is simplified like any other.
	far := 1
	maxD := 0.0
	for i := 1; i < len(pts); i++ {
		d := distSq(pts[0], pts[i])
		if d > maxD {
			maxD = d
			far = i
		}
	}

	first := douglasPeucker(pts[:far+1], epsilon)
	back := make([]Point, 0, len(pts)-far+1)
	back = append(back, pts[far:]...)
	back = append(back, pts[0])
	second := douglasPeucker(back, epsilon)

	out := make([]Point, 0, len(first)+len(second)-2)
	out = append(out, first...)
	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}
	return out
}

// douglasPeucker simplifies an open polyline, always keeping both endpoints.
func douglasPeucker(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return pts
	}

	maxDist := 0.0
	index := 0
	for i := 1; i < len(pts)-1; i++ {
		d := perpendicularDistance(pts[i], pts[0], pts[len(pts)-1])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []Point{pts[0], pts[len(pts)-1]}
	}

	left := douglasPeucker(pts[:index+1], epsilon)
	right := douglasPeucker(pts[index:], epsilon)
	out := make([]Point, 0, len(left)+len(right)-1)
	out = append(out, left...)
	out = append(out, right[1:]...)
	return out
}

// perpendicularDistance is the distance from p to the segment a-b.
func perpendicularDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	// Cross product magnitude over segment length = distance to the
	// infinite line; endpoints dominate outside the segment projection.
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	if t > 1 {
		return math.Hypot(p.X-b.X, p.Y-b.Y)
	}
	return math.Abs((p.X-a.X)*dy-(p.Y-a.Y)*dx) / math.Sqrt(lenSq)
}

func distSq(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
