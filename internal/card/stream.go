package card

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"cardsheet/internal/layout"
)

// Stream normalizes the named files one at a time, in order, so only a
// single source image is ever held in memory. It is finite and cannot be
// restarted. Usage follows bufio.Scanner: Next, then Card/Name, then Err
// once Next returns false.
type Stream struct {
	dir   string
	names []string
	geom  layout.Geometry

	pos  int
	cur  *image.NRGBA
	name string
	err  error
}

// NewStream returns a stream over the files named in names under dir.
func NewStream(dir string, names []string, geom layout.Geometry) *Stream {
	return &Stream{dir: dir, names: names, geom: geom}
}

// Next loads and normalizes the next card. It returns false when the
// stream is exhausted or a card fails; Err distinguishes the two.
func (s *Stream) Next() bool {
	if s.err != nil || s.pos >= len(s.names) {
		return false
	}
	name := s.names[s.pos]
	s.pos++

	img, err := s.load(name)
	if err != nil {
		s.err = err
		return false
	}
	s.cur, err = Normalize(img, s.geom.CardPxWidth, s.geom.CardPxHeight, s.geom.CropPx)
	if err != nil {
		s.err = fmt.Errorf("%s: %w", name, err)
		return false
	}
	s.name = name
	return true
}

// Card returns the card produced by the last successful Next.
func (s *Stream) Card() *image.NRGBA { return s.cur }

// Name returns the source filename of the current card.
func (s *Stream) Name() string { return s.name }

// Err returns the error that stopped the stream, or nil after a full run.
func (s *Stream) Err() error { return s.err }

func (s *Stream) load(name string) (img image.Image, err error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path) //nolint:gosec // name comes from listing dir itself
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	img, err = imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	return img, nil
}
