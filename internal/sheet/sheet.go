// Package sheet composes normalized cards into a paginated PDF with cut
// guides at every cell boundary. Cards are embedded directly at their
// grid offsets and the guides are native vector lines, so nothing is
// re-rasterized and no intermediate files touch the disk.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf/v2"
	qrcode "github.com/skip2/go-qrcode"

	"cardsheet/internal/layout"
)

// ErrWrite is returned when the document cannot be rendered or persisted.
var ErrWrite = errors.New("write document")

// Builder accumulates cards into a document, one grid cell at a time in
// row-major order, opening a fresh page whenever the grid fills up. Pages
// are finalized with guide lines drawn over the card edges, the way a cut
// guide must sit.
type Builder struct {
	geom layout.Geometry
	pdf  *gofpdf.Fpdf

	slots    int // grid cells consumed, across all pages
	cards    int
	openPage bool
}

// NewBuilder creates an empty document sized to the layout's page format.
func NewBuilder(geom layout.Geometry) *Builder {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: geom.PageWidth, Ht: geom.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &Builder{geom: geom, pdf: pdf}
}

// Add places one card image in the next free cell. name must be unique
// per document; the source filename is.
func (b *Builder) Add(img image.Image, name string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	x, y := b.nextCell()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	b.pdf.RegisterImageOptionsReader(name, opt, &buf)
	b.pdf.ImageOptions(name, x, y, b.geom.CardWidth, b.geom.CardHeight, false, opt, 0, "")
	b.cards++
	return b.pdfErr()
}

// StampQR draws a QR code for url in the next free cell, with the url
// printed underneath. Decks that fill their last page exactly get one
// extra page for it.
func (b *Builder) StampQR(url string) error {
	code, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("qr for %s: %w", url, err)
	}
	x, y := b.nextCell()
	side := math.Min(b.geom.CardWidth, b.geom.CardHeight) * 0.6
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	b.pdf.RegisterImageOptionsReader("qr-link", opt, bytes.NewReader(code))
	b.pdf.ImageOptions("qr-link",
		x+(b.geom.CardWidth-side)/2, y+(b.geom.CardHeight-side)/2, side, side,
		false, opt, 0, "")
	b.pdf.SetFont("Helvetica", "", 7)
	b.pdf.SetTextColor(0, 0, 0)
	b.pdf.SetXY(x, y+(b.geom.CardHeight+side)/2+4)
	b.pdf.CellFormat(b.geom.CardWidth, 10, url, "", 0, "C", false, 0, "")
	return b.pdfErr()
}

// CardCount returns the number of cards placed so far.
func (b *Builder) CardCount() int { return b.cards }

// PageCount returns the number of pages opened so far.
func (b *Builder) PageCount() int { return b.pdf.PageCount() }

// WriteFile finalizes the document and persists it atomically: the PDF is
// rendered to memory, written next to path and renamed into place only on
// full success, so a failed run never leaves output that looks complete.
func (b *Builder) WriteFile(path string) error {
	b.finishPage()
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // printable artifact
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// nextCell returns the origin of the next free cell, finalizing the
// previous page and opening a new one at grid boundaries.
func (b *Builder) nextCell() (x, y float64) {
	idx := b.slots % b.geom.PerPage()
	if idx == 0 {
		b.finishPage()
		b.pdf.AddPage()
		b.openPage = true
	}
	b.slots++
	return b.geom.CellOrigin(idx)
}

// finishPage draws the cut guides over the current page, if one is open.
// Guides go on top of the cards so they stay visible along card edges.
func (b *Builder) finishPage() {
	if !b.openPage {
		return
	}
	b.openPage = false
	b.pdf.SetDrawColor(0, 0, 0)
	b.pdf.SetLineWidth(b.geom.LineWidth)
	for r := 0; r <= b.geom.Rows; r++ {
		x1, y1, x2, y2 := b.geom.HLine(r)
		b.pdf.Line(x1, y1, x2, y2)
	}
	for c := 0; c <= b.geom.Columns; c++ {
		x1, y1, x2, y2 := b.geom.VLine(c)
		b.pdf.Line(x1, y1, x2, y2)
	}
}

func (b *Builder) pdfErr() error {
	if b.pdf.Err() {
		return fmt.Errorf("%w: %v", ErrWrite, b.pdf.Error())
	}
	return nil
}
