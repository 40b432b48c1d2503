package pricechart

import (
	"fmt"
	"os"
	"path/filepath"

	logging "elpris/internal/infra/log"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Font sizes in points, converted to pixels with the output dpi.
const (
	tickFontPt       = 10.0
	labelFontPt      = 10.0
	legendFontPt     = 10.0
	titleFontPt      = 12.0
	annotationFontPt = 8.0
)

// systemFontPaths are tried after an explicitly configured font.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"~/Library/Fonts/DejaVuSans.ttf",
}

type fontSet struct {
	tick       font.Face
	label      font.Face
	legend     font.Face
	title      font.Face
	annotation font.Face
	source     string
}

// loadFonts parses the first usable TrueType file, falling back to the
// embedded Go Regular font so rendering never depends on the host.
func loadFonts(configured string, dpi int) (*fontSet, error) {
	ttf, source := findFont(configured)
	if ttf == nil {
		if configured != "" {
			return nil, fmt.Errorf("font %s could not be loaded", configured)
		}
		parsed, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded font: %w", err)
		}
		ttf, source = parsed, "embedded:goregular"
	}

	face := func(pt float64) font.Face {
		return truetype.NewFace(ttf, &truetype.Options{
			Size:    ptToPx(pt, dpi),
			Hinting: font.HintingFull,
		})
	}

	logging.LogDebug("Chart font selected", zap.String("source", source))

	return &fontSet{
		tick:       face(tickFontPt),
		label:      face(labelFontPt),
		legend:     face(legendFontPt),
		title:      face(titleFontPt),
		annotation: face(annotationFontPt),
		source:     source,
	}, nil
}

func findFont(configured string) (*truetype.Font, string) {
	paths := systemFontPaths
	if configured != "" {
		paths = []string{configured}
	}

	for _, path := range paths {
		expanded := expandHome(path)
		data, err := os.ReadFile(expanded)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			logging.LogWarn("Font file exists but failed to parse",
				zap.String("path", expanded),
				zap.Error(err))
			continue
		}
		return f, expanded
	}
	return nil, ""
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

// ptToPx converts typographic points to pixels at dpi.
func ptToPx(pt float64, dpi int) float64 {
	return pt * float64(dpi) / 72
}
