package display

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// FrameSaver writes every Nth shown frame to a directory as PNG or JPEG.
//
// Filename format: <window>_<seq:06d>.<ext>, e.g. disease_detection_000042.png
type FrameSaver struct {
	Stop *StopFlag

	dir         string
	format      string
	jpegQuality int
	every       int
	seq         atomic.Uint64
	saved       atomic.Uint64
}

// NewFrameSaver creates dir if needed. format is "png" or "jpeg"; every <= 1
// saves all frames.
func NewFrameSaver(dir, format string, jpegQuality, every int, stop *StopFlag) (*FrameSaver, error) {
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported frame format %q (must be png or jpeg)", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	if every < 1 {
		every = 1
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &FrameSaver{Stop: stop, dir: dir, format: format, jpegQuality: jpegQuality, every: every}, nil
}

func (s *FrameSaver) Show(name string, img image.Image) error {
	n := s.seq.Add(1)
	if (n-1)%uint64(s.every) != 0 {
		return nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%06d.%s", slug(name), n, s.format))
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	switch s.format {
	case "png":
		err = png.Encode(fh, img)
	case "jpeg":
		err = jpeg.Encode(fh, img, &jpeg.Options{Quality: s.jpegQuality})
	}
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save frame %d: %w", n, err)
	}
	s.saved.Add(1)
	return nil
}

func (s *FrameSaver) StopRequested() bool { return s.Stop.Requested() }
func (s *FrameSaver) Close() error        { return nil }

// Saved returns how many frames reached disk.
func (s *FrameSaver) Saved() uint64 { return s.saved.Load() }

func slug(name string) string {
	if name == "" {
		return "frame"
	}
	return strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name))
}
