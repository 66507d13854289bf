package constraint

import (
	"math"
	"testing"

	"zonemask/internal/mask"
)

func gridFromStrings(rows []string) ([]uint8, int, int) {
	h := len(rows)
	w := len(rows[0])
	g := make([]uint8, w*h)
	for y, row := range rows {
		for x := 0; x < w; x++ {
			if row[x] == '#' {
				g[y*w+x] = 1
			}
		}
	}
	return g, w, h
}

func TestLargestRectangle(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want Rect
	}{
		{
			"full grid",
			[]string{
				"####",
				"####",
				"####",
			},
			Rect{X: 0, Y: 0, Width: 4, Height: 3},
		},
		{
			"L shape keeps the tall arm",
			[]string{
				"##..",
				"##..",
				"##..",
				"####",
			},
			Rect{X: 0, Y: 0, Width: 2, Height: 4},
		},
		{
			"interior block",
			[]string{
				".....",
				".###.",
				".###.",
				".....",
			},
			Rect{X: 1, Y: 1, Width: 3, Height: 2},
		},
		{
			"empty grid",
			[]string{
				"....",
				"....",
			},
			Rect{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, w, h := gridFromStrings(tt.rows)
			got := largestRectangle(g, w, h)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConnectedAreas(t *testing.T) {
	g, w, h := gridFromStrings([]string{
		"##..#",
		"##..#",
		".....",
		"###..",
	})
	comps := connectedAreas(g, w, h)
	if len(comps) != 3 {
		t.Fatalf("expected 3 areas, got %d", len(comps))
	}

	total := 0
	for _, c := range comps {
		for _, v := range c {
			if v != 0 {
				total++
			}
		}
	}
	if total != 9 {
		t.Errorf("component pixels: got %d, want 9", total)
	}
}

func TestRasterizeAllowed_MarginExcluded(t *testing.T) {
	m := &mask.Mask{
		Width:    100,
		Height:   100,
		Contours: []mask.Contour{rectContour(0, 0, 99, 99)},
	}

	allowed := rasterizeAllowed(m, 10)
	for _, p := range [][2]int{{0, 0}, {5, 50}, {50, 5}, {95, 50}, {50, 95}} {
		if allowed[p[1]*m.Width+p[0]] != 0 {
			t.Errorf("pixel (%d,%d) inside the margin band must be excluded", p[0], p[1])
		}
	}
	if allowed[50*m.Width+50] == 0 {
		t.Error("interior pixel (50,50) must be allowed")
	}
}

func TestRasterizeAllowed_HoleExcluded(t *testing.T) {
	hole := rectContour(40, 40, 60, 60)
	for i, j := 0, len(hole.Points)-1; i < j; i, j = i+1, j-1 {
		hole.Points[i], hole.Points[j] = hole.Points[j], hole.Points[i]
	}
	hole.Hole = true

	m := &mask.Mask{
		Width:    100,
		Height:   100,
		Contours: []mask.Contour{rectContour(10, 10, 89, 89), hole},
	}

	allowed := rasterizeAllowed(m, 0)
	if allowed[50*m.Width+50] != 0 {
		t.Error("hole center (50,50) must be excluded")
	}
	if allowed[20*m.Width+20] == 0 {
		t.Error("ring pixel (20,20) must be allowed")
	}
	if allowed[5*m.Width+5] != 0 {
		t.Error("pixel outside the contour must be excluded")
	}
}

func TestSuggestLogoSize(t *testing.T) {
	tests := []struct {
		name     string
		rect     Rect
		min      Size
		aspect   float64
		wantW    float64
		wantH    float64
		wantFits bool
	}{
		{"square logo fits", Rect{Width: 300, Height: 200}, Size{48, 48}, 1, 48, 48, true},
		{"wide logo from aspect", Rect{Width: 300, Height: 200}, Size{48, 48}, 2, 96, 48, true},
		{"free aspect follows zone", Rect{Width: 200, Height: 100}, Size{48, 48}, 0, 96, 48, true},
		{"too big gets capped", Rect{Width: 100, Height: 100}, Size{400, 400}, 1, 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := Requirements{LogoPlacement: LogoRequirements{
				MinLogoSize: tt.min,
				AspectRatio: tt.aspect,
			}}
			got, fits := suggestLogoSize(tt.rect, reqs)
			if math.Abs(got.Width-tt.wantW) > 1e-9 || math.Abs(got.Height-tt.wantH) > 1e-9 {
				t.Errorf("size: got %gx%g, want %gx%g", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if fits != tt.wantFits {
				t.Errorf("fits: got %v, want %v", fits, tt.wantFits)
			}
		})
	}
}

func TestPlacementZones_Ranked(t *testing.T) {
	m := &mask.Mask{
		Width:  400,
		Height: 400,
		Contours: []mask.Contour{
			rectContour(50, 50, 249, 249),
			rectContour(300, 300, 349, 349),
		},
	}
	reqs := DefaultRequirements()
	reqs.Position.MarginFromEdges = 0

	zones := placementZones(m, reqs, maskArea(m))
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].Quality < zones[1].Quality {
		t.Error("zones must be sorted best first")
	}
	if zones[0].Region.Width < zones[1].Region.Width {
		t.Error("the larger region should rank first")
	}
	if zones[0].ID != "zone-1" || zones[1].ID != "zone-2" {
		t.Errorf("zone IDs must follow rank order: %q, %q", zones[0].ID, zones[1].ID)
	}
}
