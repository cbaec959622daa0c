// Package report joins a selected microbe with its knowledge-base entry and
// sequence pair into one immutable per-frame Record, and hands that record to
// the overlay, the log and the session aggregator.
package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"cellscope-core/dna"
	"cellscope-core/microbe"
	"go.uber.org/zap"
)

// ErrLogAppend marks a failure of the Logger boundary.
var ErrLogAppend = errors.New("log append failed")

// Record is the per-frame report. Disease, Symptoms and Risk always equal the
// knowledge-base triple for Microbe (or the Unknown triple) and RevComp is the
// reverse complement of Sequence.
type Record struct {
	Frame     int
	Timestamp time.Time
	Cells     int
	Microbe   string
	Disease   string
	Symptoms  string
	Risk      microbe.Risk
	Sequence  string
	RevComp   string
}

// Line is one text row drawn over a frame. Origin is the baseline start.
type Line struct {
	Text   string
	Origin image.Point
	Color  color.RGBA
}

var (
	ColorHeadline = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	ColorDetail   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// OverlayLines renders the two overlay rows for r.
func OverlayLines(r Record) []Line {
	return []Line{
		{
			Text:   fmt.Sprintf("Cells: %d | Microbe: %s | Disease: %s", r.Cells, r.Microbe, r.Disease),
			Origin: image.Pt(10, 30),
			Color:  ColorHeadline,
		},
		{
			Text:   fmt.Sprintf("Symptoms: %s | Risk: %s", r.Symptoms, r.Risk),
			Origin: image.Pt(10, 60),
			Color:  ColorDetail,
		},
	}
}

// Overlay draws lines onto a frame and returns the image to display.
type Overlay interface {
	Draw(frame image.Image, lines []Line) image.Image
}

// Logger persists records. A failed Append is fatal to the session.
type Logger interface {
	Append(Record) error
}

// Collector accumulates records in memory.
type Collector interface {
	Append(Record)
}

// Synthesizer builds records from the knowledge base, the sequence catalog
// and a selection strategy.
type Synthesizer struct {
	kb   *microbe.KnowledgeBase
	cat  *dna.Catalog
	sel  Selector
	now  func() time.Time
	keys []string
	log  *zap.Logger

	Overlay   Overlay
	Logger    Logger
	Collector Collector
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Synthesizer) { s.now = now } }

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option { return func(s *Synthesizer) { s.log = l } }

func NewSynthesizer(kb *microbe.KnowledgeBase, cat *dna.Catalog, sel Selector, opts ...Option) *Synthesizer {
	if sel == nil {
		sel = NewRandomSelector(0)
	}
	s := &Synthesizer{
		kb:   kb,
		cat:  cat,
		sel:  sel,
		now:  time.Now,
		keys: kb.Names(),
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Synthesize selects a microbe and joins its disease triple and sequence pair
// into a record for a frame with the given shape count.
func (s *Synthesizer) Synthesize(frame, cells int) (Record, error) {
	name := s.sel.Select(s.keys)
	disease, symptoms, risk := s.kb.Identify(name)
	fwd, rc, err := s.cat.Derive(name)
	if err != nil {
		return Record{}, fmt.Errorf("derive %q: %w", name, err)
	}
	return Record{
		Frame:     frame,
		Timestamp: s.now(),
		Cells:     cells,
		Microbe:   name,
		Disease:   disease,
		Symptoms:  symptoms,
		Risk:      risk,
		Sequence:  fwd,
		RevComp:   rc,
	}, nil
}

// Report synthesizes a record, draws it over img, logs it and collects it, in
// that order. A logging failure returns before the record is collected. The
// returned image is img itself when no Overlay is set.
func (s *Synthesizer) Report(frame int, img image.Image, cells int) (Record, image.Image, error) {
	rec, err := s.Synthesize(frame, cells)
	if err != nil {
		return Record{}, img, err
	}
	shown := img
	if s.Overlay != nil && img != nil {
		shown = s.Overlay.Draw(img, OverlayLines(rec))
	}
	if s.Logger != nil {
		if err := s.Logger.Append(rec); err != nil {
			return rec, shown, fmt.Errorf("frame %d: %w: %w", frame, ErrLogAppend, err)
		}
	}
	if s.Collector != nil {
		s.Collector.Append(rec)
	}
	s.log.Debug("frame reported",
		zap.Int("frame", frame),
		zap.Int("cells", cells),
		zap.String("microbe", rec.Microbe),
		zap.String("risk", string(rec.Risk)),
	)
	return rec, shown, nil
}
