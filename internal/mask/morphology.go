package mask

// KernelShape selects the structuring element used by morphological
// smoothing.
type KernelShape string

const (
	// KernelSquare is a full size×size square structuring element.
	KernelSquare KernelShape = "square"

	// KernelCross is a plus-shaped structuring element: the center row and
	// column of the size×size square. It erodes diagonals less aggressively
	// than the square.
	KernelCross KernelShape = "cross"
)

// kernelOffsets expands a structuring element into neighbor offsets.
// size must be odd; the element is centered on the origin.
func kernelOffsets(size int, shape KernelShape) [][2]int {
	r := size / 2
	offsets := make([][2]int, 0, size*size)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if shape == KernelCross && dx != 0 && dy != 0 {
				continue
			}
			offsets = append(offsets, [2]int{dx, dy})
		}
	}
	return offsets
}

// erode keeps a foreground pixel only when every pixel under the kernel is
// foreground. Pixels outside the image count as background, so erosion
// shrinks regions touching the border.
func erode(b *bitmap, offsets [][2]int) *bitmap {
	out := newBitmap(b.w, b.h)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if !b.at(x, y) {
				continue
			}
			keep := true
			for _, off := range offsets {
				if !b.at(x+off[0], y+off[1]) {
					keep = false
					break
				}
			}
			if keep {
				out.set(x, y, 1)
			}
		}
	}
	return out
}

// dilate marks a pixel foreground when any pixel under the kernel is
// foreground.
func dilate(b *bitmap, offsets [][2]int) *bitmap {
	out := newBitmap(b.w, b.h)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if b.at(x, y) {
				out.set(x, y, 1)
				continue
			}
			for _, off := range offsets {
				if b.at(x+off[0], y+off[1]) {
					out.set(x, y, 1)
					break
				}
			}
		}
	}
	return out
}

// smooth runs morphological opening followed by closing for the configured
// number of rounds. Opening (erode, dilate) removes protrusions and isolated
// noise; closing (dilate, erode) fills small gaps and notches.
func smooth(b *bitmap, opts SmoothingOptions) *bitmap {
	offsets := kernelOffsets(opts.KernelSize, opts.shape())
	for i := 0; i < opts.Iterations; i++ {
		b = dilate(erode(b, offsets), offsets) // opening
		b = erode(dilate(b, offsets), offsets) // closing
	}
	return b
}
