package mask

import "zonemask/internal/detection"

// bitmap is a flat binary pixel grid, index = y*w + x. A non-zero byte is
// foreground. All mask processing stages operate on this buffer; it is
// created per call and discarded after contour extraction.
type bitmap struct {
	w, h int
	pix  []uint8
}

func newBitmap(w, h int) *bitmap {
	return &bitmap{w: w, h: h, pix: make([]uint8, w*h)}
}

func (b *bitmap) at(x, y int) bool {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return false
	}
	return b.pix[y*b.w+x] != 0
}

func (b *bitmap) set(x, y int, v uint8) {
	b.pix[y*b.w+x] = v
}

// count returns the number of foreground pixels.
func (b *bitmap) count() int {
	n := 0
	for _, p := range b.pix {
		if p != 0 {
			n++
		}
	}
	return n
}

// fromLabels rasterizes a detection label map into a binary mask: every
// labeled (non-background) pixel becomes foreground.
func fromLabels(lm *detection.LabelMap) *bitmap {
	b := newBitmap(lm.Width, lm.Height)
	for i, l := range lm.Labels {
		if l != 0 {
			b.pix[i] = 1
		}
	}
	return b
}
