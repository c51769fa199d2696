package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"cardsheet/internal/layout"
)

func testGeometry(t *testing.T) layout.Geometry {
	t.Helper()
	g, err := layout.Default().Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	return g
}

// card is a tiny stand-in raster; the builder scales whatever it gets
// into the card box.
func card() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 14))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+1] = 0x80
		img.Pix[i+3] = 0xff
	}
	return img
}

func addCards(t *testing.T, b *Builder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := b.Add(card(), fmt.Sprintf("card_%03d.png", i)); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
}

func TestBuilder_PageCount(t *testing.T) {
	tests := []struct {
		cards, pages int
	}{
		{1, 1},
		{8, 1},
		{9, 1},
		{10, 2},
		{18, 2},
		{19, 3},
	}
	for _, tt := range tests {
		b := NewBuilder(testGeometry(t))
		addCards(t, b, tt.cards)
		if got := b.PageCount(); got != tt.pages {
			t.Errorf("%d cards: PageCount = %d, want %d", tt.cards, got, tt.pages)
		}
		if got := b.CardCount(); got != tt.cards {
			t.Errorf("CardCount = %d, want %d", got, tt.cards)
		}
	}
}

func TestBuilder_WriteFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "deck.pdf")

	b := NewBuilder(testGeometry(t))
	addCards(t, b, 10)
	if err := b.WriteFile(out); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	// Atomic write leaves no scratch file behind.
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want just the PDF", len(entries))
	}
}

func TestBuilder_WriteFileBadPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "missing", "deck.pdf")

	b := NewBuilder(testGeometry(t))
	addCards(t, b, 1)
	err := b.WriteFile(out)
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("failed write left an output file")
	}
}

func TestBuilder_QRTakesNextCell(t *testing.T) {
	g := testGeometry(t)

	// Room left on the last page: no extra page.
	b := NewBuilder(g)
	addCards(t, b, 5)
	if err := b.StampQR("https://example.com/rules"); err != nil {
		t.Fatalf("StampQR: %v", err)
	}
	if got := b.PageCount(); got != 1 {
		t.Errorf("PageCount = %d, want 1", got)
	}

	// Exactly full grid: the stamp opens one more page.
	b = NewBuilder(g)
	addCards(t, b, 9)
	if err := b.StampQR("https://example.com/rules"); err != nil {
		t.Fatalf("StampQR: %v", err)
	}
	if got := b.PageCount(); got != 2 {
		t.Errorf("PageCount = %d, want 2", got)
	}
}

func TestBuilder_WrittenPageObjects(t *testing.T) {
	// Page content streams are compressed, but page dictionaries are
	// plain text: a 10-card document must contain two /Type /Page
	// objects (plus the /Type /Pages tree node).
	dir := t.TempDir()
	out := filepath.Join(dir, "deck.pdf")

	b := NewBuilder(testGeometry(t))
	addCards(t, b, 10)
	if err := b.WriteFile(out); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	pages := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	if pages != 2 {
		t.Errorf("written document has %d page objects, want 2", pages)
	}
}

func TestBuilder_NoCardsNoPages(t *testing.T) {
	b := NewBuilder(testGeometry(t))
	if got := b.PageCount(); got != 0 {
		t.Errorf("PageCount = %d, want 0", got)
	}
}
