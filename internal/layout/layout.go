// Package layout holds the sheet configuration and the grid geometry
// derived from it: page size, card footprint, margins, cell origins and
// guide-line spans. Lengths are PDF points unless a field says otherwise.
package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks a configuration that cannot produce a valid sheet.
var ErrConfig = errors.New("invalid layout")

// Layout is the complete configuration for one run. There is no global
// state; callers build a Layout (usually from Default, a preset file and
// flags) and pass it down.
type Layout struct {
	PageWidth  float64 `yaml:"pageWidth"`  // points
	PageHeight float64 `yaml:"pageHeight"` // points

	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`

	CardWidthMM  float64 `yaml:"cardWidthMM"`
	CardHeightMM float64 `yaml:"cardHeightMM"`

	DPI    int `yaml:"dpi"`    // raster resolution of normalized cards
	CropPx int `yaml:"cropPx"` // border stripped from each source edge, pixels

	Bleed     float64 `yaml:"bleed"`     // guide-line overhang past the grid
	LineWidth float64 `yaml:"lineWidth"` // guide-line stroke width
}

// Default returns the stock print-and-play layout: poker-size cards
// (63x88mm) in a 3x3 grid on an A4 page, rasterized at 300 DPI.
func Default() Layout {
	return Layout{
		PageWidth:    595,
		PageHeight:   842,
		Columns:      3,
		Rows:         3,
		CardWidthMM:  63,
		CardHeightMM: 88,
		DPI:          300,
		CropPx:       0,
		Bleed:        10,
		LineWidth:    1,
	}
}

// Load reads a YAML preset file on top of the defaults, so a preset only
// needs to name the fields it changes.
func Load(path string) (Layout, error) {
	l := Default()
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Layout{}, err
	}
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return l, nil
}

// MMToPt converts millimeters to whole points (1 pt = 1/72 in), truncating
// the fraction so a 63mm card comes out at 178 pt.
func MMToPt(mm float64) int {
	return int(mm * 72 / 25.4)
}

// MMToPx converts millimeters to pixels at the given resolution, rounding
// to the nearest pixel.
func MMToPx(mm float64, dpi int) int {
	return int(math.Round(mm * float64(dpi) / 25.4))
}

// Geometry is everything derived from a Layout that the normalizer,
// compositor and guide renderer need. Margins center the card block on
// the page and are identical for every page of a document.
type Geometry struct {
	PageWidth  float64
	PageHeight float64

	Columns int
	Rows    int

	CardWidth  float64 // points
	CardHeight float64 // points

	CardPxWidth  int // normalized raster footprint
	CardPxHeight int
	CropPx       int

	XMargin float64
	YMargin float64

	Bleed     float64
	LineWidth float64
}

// Validate reports the first configuration error, wrapped in ErrConfig.
func (l Layout) Validate() error {
	switch {
	case l.PageWidth <= 0 || l.PageHeight <= 0:
		return fmt.Errorf("%w: page size %gx%g pt", ErrConfig, l.PageWidth, l.PageHeight)
	case l.Columns < 1 || l.Rows < 1:
		return fmt.Errorf("%w: grid %dx%d", ErrConfig, l.Columns, l.Rows)
	case l.CardWidthMM <= 0 || l.CardHeightMM <= 0:
		return fmt.Errorf("%w: card size %gx%gmm", ErrConfig, l.CardWidthMM, l.CardHeightMM)
	case l.DPI < 1:
		return fmt.Errorf("%w: dpi %d", ErrConfig, l.DPI)
	case l.CropPx < 0:
		return fmt.Errorf("%w: crop %dpx", ErrConfig, l.CropPx)
	case l.Bleed < 0:
		return fmt.Errorf("%w: bleed %g pt", ErrConfig, l.Bleed)
	case l.LineWidth <= 0:
		return fmt.Errorf("%w: line width %g pt", ErrConfig, l.LineWidth)
	}
	cardW := float64(MMToPt(l.CardWidthMM))
	cardH := float64(MMToPt(l.CardHeightMM))
	if float64(l.Columns)*cardW > l.PageWidth || float64(l.Rows)*cardH > l.PageHeight {
		return fmt.Errorf("%w: %dx%d grid of %gx%g pt cards does not fit %gx%g pt page",
			ErrConfig, l.Columns, l.Rows, cardW, cardH, l.PageWidth, l.PageHeight)
	}
	return nil
}

// Geometry validates the layout and derives the grid geometry from it.
func (l Layout) Geometry() (Geometry, error) {
	if err := l.Validate(); err != nil {
		return Geometry{}, err
	}
	cardW := float64(MMToPt(l.CardWidthMM))
	cardH := float64(MMToPt(l.CardHeightMM))
	return Geometry{
		PageWidth:    l.PageWidth,
		PageHeight:   l.PageHeight,
		Columns:      l.Columns,
		Rows:         l.Rows,
		CardWidth:    cardW,
		CardHeight:   cardH,
		CardPxWidth:  MMToPx(l.CardWidthMM, l.DPI),
		CardPxHeight: MMToPx(l.CardHeightMM, l.DPI),
		CropPx:       l.CropPx,
		XMargin:      (l.PageWidth - float64(l.Columns)*cardW) / 2,
		YMargin:      (l.PageHeight - float64(l.Rows)*cardH) / 2,
		Bleed:        l.Bleed,
		LineWidth:    l.LineWidth,
	}, nil
}

// PerPage is the number of grid cells on one page.
func (g Geometry) PerPage() int {
	return g.Columns * g.Rows
}

// CellOrigin returns the top-left point of the cell for the zero-based
// in-page index idx. Cells fill row-major: left to right, then down.
func (g Geometry) CellOrigin(idx int) (x, y float64) {
	row := idx / g.Columns
	col := idx % g.Columns
	return float64(col)*g.CardWidth + g.XMargin, float64(row)*g.CardHeight + g.YMargin
}

// HLine returns the endpoints of horizontal guide line r (0..Rows), which
// overhangs the grid by Bleed on both sides.
func (g Geometry) HLine(r int) (x1, y1, x2, y2 float64) {
	y := float64(r)*g.CardHeight + g.YMargin
	return g.XMargin - g.Bleed, y, g.PageWidth - (g.XMargin - g.Bleed), y
}

// VLine returns the endpoints of vertical guide line c (0..Columns).
func (g Geometry) VLine(c int) (x1, y1, x2, y2 float64) {
	x := float64(c)*g.CardWidth + g.XMargin
	return x, g.YMargin - g.Bleed, x, g.PageHeight - (g.YMargin - g.Bleed)
}
