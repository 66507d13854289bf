package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"zonemask/internal/constraint"
	"zonemask/internal/detection"
	"zonemask/internal/mask"
	"zonemask/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("zonemask %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	// Configure logging to stderr (stdout is for the report)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("zonemask: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("zonemask", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "zonemask - detect a marked safe zone and validate logo placement")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Usage: zonemask [options] <image>")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Options:")
		fs.PrintDefaults()
	}

	var (
		colorHex  = fs.String("color", "#00FF00", "marker color as #RRGGBB hex")
		tolerance = fs.Float64("tolerance", 10, "color tolerance in percent (0-100)")
		space     = fs.String("space", "lab", "comparison color space: lab, rgb, or hsl")
		minPixels = fs.Int("min-pixels", 16, "noise floor: smallest region kept, in pixels")

		blurSigma = fs.Float64("blur", 0.8, "Gaussian blur sigma before detection, 0 disables")
		maxDim    = fs.Int("max-dim", 2048, "downscale so the longer side is at most this, 0 keeps size")

		smoothing = fs.Int("smooth", 1, "morphological smoothing iterations, 0 disables")
		kernel    = fs.Int("kernel", 3, "smoothing kernel size (odd, >= 3)")
		holes     = fs.Int("min-hole", 64, "fill enclosed holes smaller than this many pixels, 0 keeps all")
		epsilon   = fs.Float64("epsilon", 1.5, "contour simplification tolerance in pixels, 0 keeps all points")

		minArea    = fs.Float64("min-area", 2500, "minimum mask area in square pixels")
		margin     = fs.Int("margin", 16, "required distance from image edges in pixels")
		logoW      = fs.Float64("logo-width", 48, "minimum logo width in pixels")
		logoH      = fs.Float64("logo-height", 48, "minimum logo height in pixels")
		logoAspect = fs.Float64("logo-aspect", 0, "logo width/height ratio, 0 leaves it free")
		splitOK    = fs.Bool("allow-split", false, "accept a zone split into multiple regions")

		pngOut  = fs.String("png", "", "write the alpha mask as PNG to this path")
		svgOut  = fs.String("svg", "", "write the mask outline as an SVG document to this path")
		jsonOut = fs.String("json", "", "write the mask contours and metrics as JSON to this path")
		verbose = fs.Bool("verbose", false, "log stage timings to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one image path, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	marker, err := parseHexColor(*colorHex)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Preprocess: pipeline.PreprocessOptions{
			BlurSigma:    *blurSigma,
			MaxDimension: *maxDim,
		},
		Detection: detection.Settings{
			Target:           marker,
			Space:            detection.ColorSpace(*space),
			TolerancePercent: *tolerance,
			MinRegionPixels:  *minPixels,
		},
		Mask: mask.Options{
			FillHoles:   *holes > 0,
			MinHoleSize: *holes,
			Smoothing: mask.SmoothingOptions{
				Enabled:    *smoothing > 0,
				Iterations: *smoothing,
				KernelSize: *kernel,
			},
			Simplify: mask.SimplifyOptions{
				Enabled: *epsilon > 0,
				Epsilon: *epsilon,
			},
		},
		Requirements: constraint.Requirements{
			MinArea: *minArea,
			LogoPlacement: constraint.LogoRequirements{
				MinLogoSize: constraint.Size{Width: *logoW, Height: *logoH},
				AspectRatio: *logoAspect,
			},
			Position:   constraint.PositionRequirements{MarginFromEdges: *margin},
			Contiguity: constraint.ContiguityRequirements{RequireSingleRegion: !*splitOK},
		},
	}

	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	res, err := pipeline.Run(img, cfg)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("detected %d region(s), %d contour(s), %d zone(s) in %s",
			len(res.Regions.Regions), len(res.Mask.Contours), len(res.Validation.Zones), res.ProcessingTime)
	}

	if *pngOut != "" {
		if err := imgio.Save(*pngOut, mask.RenderAlpha(res.Mask), imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("write PNG %s: %w", *pngOut, err)
		}
	}
	if *svgOut != "" {
		if err := os.WriteFile(*svgOut, []byte(svgDocument(res.Mask)), 0o644); err != nil {
			return fmt.Errorf("write SVG %s: %w", *svgOut, err)
		}
	}
	if *jsonOut != "" {
		data, err := mask.EncodeJSON(res.Mask)
		if err != nil {
			return fmt.Errorf("encode mask: %w", err)
		}
		if err := os.WriteFile(*jsonOut, data, 0o644); err != nil {
			return fmt.Errorf("write JSON %s: %w", *jsonOut, err)
		}
	}

	fmt.Print(res.Validation.Report())

	if !res.Validation.IsUsable {
		os.Exit(2)
	}
	return nil
}

// parseHexColor parses #RRGGBB (leading # optional).
func parseHexColor(s string) (detection.RGBColor, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	var c detection.RGBColor
	if len(s) != 6 {
		return c, fmt.Errorf("invalid color %q: want RRGGBB hex", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return c, nil
}

// svgDocument wraps the mask path data in a standalone SVG file.
func svgDocument(m *mask.Mask) string {
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			"\n"+`  <path d="%s" fill="black" fill-rule="evenodd"/>`+"\n</svg>\n",
		m.Width, m.Height, m.Width, m.Height, mask.SVGPath(m))
}
