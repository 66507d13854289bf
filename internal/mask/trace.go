package mask

// Point is a 2D contour vertex in pixel-center coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Contour is one closed boundary, ordered so that outer boundaries have
// positive shoelace area and holes negative (y grows downward). The closing
// edge from the last point back to the first is implicit.
type Contour struct {
	Points []Point `json:"points"`

	// Hole marks an inner boundary enclosed by an outer contour.
	Hole bool `json:"hole,omitempty"`
}

// traceContours extracts every boundary of the mask: one outer contour per
// 8-connected foreground component plus one contour per retained hole, with
// opposite winding for holes.
//
// Components whose boundary cannot be traced into at least a triangle are
// discarded; tracing never fails outright.
func traceContours(b *bitmap) []Contour {
	var contours []Contour

	labels, count, boxes := labelComponents(b)
	for l := int32(1); l <= count; l++ {
		box := boxes[l-1]
		member := func(x, y int) bool {
			if x < 0 || x >= b.w || y < 0 || y >= b.h {
				return false
			}
			return labels[y*b.w+x] == l
		}
		pts := mooreTrace(member, box)
		if len(pts) < 3 {
			continue
		}
		if signedArea(pts) < 0 {
			reverse(pts)
		}
		contours = append(contours, Contour{Points: pts})
	}

	for _, hole := range holeComponents(b) {
		hole := hole
		member := func(x, y int) bool {
			if x < 0 || x >= b.w || y < 0 || y >= b.h {
				return false
			}
			return hole.member[y*b.w+x] != 0
		}
		pts := mooreTrace(member, hole.box)
		if len(pts) < 3 {
			continue
		}
		if signedArea(pts) > 0 {
			reverse(pts)
		}
		contours = append(contours, Contour{Points: pts, Hole: true})
	}

	return contours
}

// box is an inclusive pixel bounding box used to limit boundary searches.
type box struct {
	minX, minY, maxX, maxY int
}

// labelComponents labels 8-connected foreground components. Label 0 is
// background; labels are assigned in row-major order of each component's
// first pixel.
func labelComponents(b *bitmap) ([]int32, int32, []box) {
	labels := make([]int32, len(b.pix))
	var boxes []box
	next := int32(0)
	queue := make([]int, 0, 1024)

	offsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	}

	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			idx := y*b.w + x
			if b.pix[idx] == 0 || labels[idx] != 0 {
				continue
			}
			next++
			labels[idx] = next
			bb := box{minX: x, minY: y, maxX: x, maxY: y}

			queue = queue[:0]
			queue = append(queue, idx)
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cx := cur % b.w
				cy := cur / b.w
				if cx < bb.minX {
					bb.minX = cx
				}
				if cx > bb.maxX {
					bb.maxX = cx
				}
				if cy < bb.minY {
					bb.minY = cy
				}
				if cy > bb.maxY {
					bb.maxY = cy
				}
				for _, off := range offsets {
					nx := cx + off[0]
					ny := cy + off[1]
					if nx < 0 || nx >= b.w || ny < 0 || ny >= b.h {
						continue
					}
					ni := ny*b.w + nx
					if b.pix[ni] != 0 && labels[ni] == 0 {
						labels[ni] = next
						queue = append(queue, ni)
					}
				}
			}
			boxes = append(boxes, bb)
		}
	}
	return labels, next, boxes
}

// holeComponent is one enclosed background region retained as a hole.
type holeComponent struct {
	member []uint8
	box    box
}

// holeComponents finds 4-connected background components not reachable from
// the image border. These are the holes that survived selective filling.
func holeComponents(b *bitmap) []holeComponent {
	exterior := exteriorBackground(b)
	visited := make([]uint8, len(b.pix))
	var holes []holeComponent
	queue := make([]int, 0, 1024)

	for start := range b.pix {
		if b.pix[start] != 0 || exterior[start] != 0 || visited[start] != 0 {
			continue
		}
		member := make([]uint8, len(b.pix))
		sx := start % b.w
		sy := start / b.w
		bb := box{minX: sx, minY: sy, maxX: sx, maxY: sy}

		queue = queue[:0]
		queue = append(queue, start)
		visited[start] = 1
		member[start] = 1
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cx := cur % b.w
			cy := cur / b.w
			if cx < bb.minX {
				bb.minX = cx
			}
			if cx > bb.maxX {
				bb.maxX = cx
			}
			if cy < bb.minY {
				bb.minY = cy
			}
			if cy > bb.maxY {
				bb.maxY = cy
			}
			for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx := cx + off[0]
				ny := cy + off[1]
				if nx < 0 || nx >= b.w || ny < 0 || ny >= b.h {
					continue
				}
				ni := ny*b.w + nx
				if b.pix[ni] == 0 && exterior[ni] == 0 && visited[ni] == 0 {
					visited[ni] = 1
					member[ni] = 1
					queue = append(queue, ni)
				}
			}
		}
		holes = append(holes, holeComponent{member: member, box: bb})
	}
	return holes
}

// mooreTrace follows the boundary of a connected pixel set clockwise using
// Moore-neighbor tracing with Jacob's stopping criterion. Returned points
// are pixel centers; collinear runs are collapsed as they are emitted.
func mooreTrace(member func(x, y int) bool, bb box) []Point {
	sx, sy := -1, -1
search:
	for y := bb.minY; y <= bb.maxY; y++ {
		for x := bb.minX; x <= bb.maxX; x++ {
			if member(x, y) {
				sx, sy = x, y
				break search
			}
		}
	}
	if sx == -1 {
		return nil
	}

	// Clockwise Moore neighborhood: E, SE, S, SW, W, NW, N, NE.
	ndx := [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy := [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	dirIndex := func(dx, dy int) int {
		for i := 0; i < 8; i++ {
			if ndx[i] == dx && ndy[i] == dy {
				return i
			}
		}
		return 0
	}

	pts := make([]Point, 0, 64)
	addPoint := func(x, y int) {
		p := Point{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			if cross == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	// Row-major search enters the start pixel from the west.
	cx, cy := sx, sy
	bx, by := sx-1, sy
	startCx, startCy := cx, cy
	startBx, startBy := bx, by
	addPoint(cx, cy)

	maxSteps := 4*(bb.maxX-bb.minX+1)*(bb.maxY-bb.minY+1) + 8
	for step := 0; step < maxSteps; step++ {
		found := false
		start := (dirIndex(bx-cx, by-cy) + 1) % 8
		nbx, nby := bx, by
		for k := 0; k < 8; k++ {
			i := (start + k) % 8
			tx, ty := cx+ndx[i], cy+ndy[i]
			if member(tx, ty) {
				bx, by = nbx, nby
				cx, cy = tx, ty
				found = true
				break
			}
			nbx, nby = tx, ty
		}
		if !found {
			break // isolated pixel
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
		if n := len(pts); n == 0 || pts[n-1].X != float64(cx) || pts[n-1].Y != float64(cy) {
			addPoint(cx, cy)
		}
	}

	// Drop a duplicated closing point and a trailing vertex collinear with
	// the implicit closing edge.
	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if n := len(pts); n >= 3 {
		a, b, p := pts[n-2], pts[n-1], pts[0]
		if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
			pts = pts[:n-1]
		}
	}
	return pts
}

// reverse flips contour orientation in place.
func reverse(pts []Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
