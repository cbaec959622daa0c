// Package capture supplies frames to the detection loop.
//
// A Source is pulled synchronously, one frame at a time. Read reporting
// false ends the session normally; there are no retries.
package capture

import "image"

// Source yields frames until it is exhausted or fails.
type Source interface {
	Read() (image.Image, bool)
	Close() error
}

// Slice replays in-memory frames once.
type Slice struct {
	frames []image.Image
	next   int
	closed bool
}

func NewSlice(frames ...image.Image) *Slice { return &Slice{frames: frames} }

func (s *Slice) Read() (image.Image, bool) {
	if s.closed || s.next >= len(s.frames) {
		return nil, false
	}
	img := s.frames[s.next]
	s.next++
	return img, true
}

func (s *Slice) Close() error {
	s.closed = true
	return nil
}

// Limit stops src after n frames. n <= 0 means no limit.
func Limit(src Source, n int) Source {
	if n <= 0 {
		return src
	}
	return &limited{Source: src, left: n}
}

type limited struct {
	Source
	left int
}

func (l *limited) Read() (image.Image, bool) {
	if l.left <= 0 {
		return nil, false
	}
	img, ok := l.Source.Read()
	if ok {
		l.left--
	}
	return img, ok
}
