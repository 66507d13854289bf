package mask

// fillSmallHoles fills enclosed background regions whose area is below
// minHoleSize. Larger holes are intentional cutouts and are preserved.
//
// Background connectivity is 4-connected, the complement of the 8-connected
// foreground, so diagonal foreground pixels still seal a hole. Exterior
// background is identified by flood filling from the image border; every
// remaining background component is an enclosed hole.
func fillSmallHoles(b *bitmap, minHoleSize int) {
	exterior := exteriorBackground(b)

	visited := make([]uint8, len(b.pix))
	queue := make([]int, 0, 1024)
	hole := make([]int, 0, 1024)

	for start := range b.pix {
		if b.pix[start] != 0 || exterior[start] != 0 || visited[start] != 0 {
			continue
		}

		hole = hole[:0]
		queue = queue[:0]
		queue = append(queue, start)
		visited[start] = 1

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			hole = append(hole, cur)

			cx := cur % b.w
			cy := cur / b.w
			for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx := cx + off[0]
				ny := cy + off[1]
				if nx < 0 || nx >= b.w || ny < 0 || ny >= b.h {
					continue
				}
				ni := ny*b.w + nx
				if b.pix[ni] == 0 && exterior[ni] == 0 && visited[ni] == 0 {
					visited[ni] = 1
					queue = append(queue, ni)
				}
			}
		}

		if len(hole) < minHoleSize {
			for _, idx := range hole {
				b.pix[idx] = 1
			}
		}
	}
}

// exteriorBackground flood fills the background from every border pixel and
// returns a flat buffer marking the reachable (exterior) background.
func exteriorBackground(b *bitmap) []uint8 {
	exterior := make([]uint8, len(b.pix))
	queue := make([]int, 0, 2*(b.w+b.h))

	seed := func(x, y int) {
		idx := y*b.w + x
		if b.pix[idx] == 0 && exterior[idx] == 0 {
			exterior[idx] = 1
			queue = append(queue, idx)
		}
	}
	for x := 0; x < b.w; x++ {
		seed(x, 0)
		seed(x, b.h-1)
	}
	for y := 0; y < b.h; y++ {
		seed(0, y)
		seed(b.w-1, y)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx := cur % b.w
		cy := cur / b.w
		for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx := cx + off[0]
			ny := cy + off[1]
			if nx < 0 || nx >= b.w || ny < 0 || ny >= b.h {
				continue
			}
			ni := ny*b.w + nx
			if b.pix[ni] == 0 && exterior[ni] == 0 {
				exterior[ni] = 1
				queue = append(queue, ni)
			}
		}
	}
	return exterior
}
