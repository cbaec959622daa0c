// Package display is the overlay and presentation boundary of the detection
// loop. Real windowing lives outside this module; the sinks here either
// discard frames or write them to disk, and stop requests arrive through a
// StopFlag (typically driven by WatchKeys).
package display

import (
	"image"
	"sync/atomic"
)

const (
	// WindowName titles every shown frame.
	WindowName = "Disease Detection"
	// QuitKey requests a stop when typed on the controlling input.
	QuitKey = 'q'
)

// Sink presents annotated frames.
type Sink interface {
	Show(name string, img image.Image) error
	// StopRequested reports whether the user asked to end the session.
	StopRequested() bool
	Close() error
}

// StopFlag is a one-way latch shared between an input watcher and a sink.
type StopFlag struct{ v atomic.Bool }

func (f *StopFlag) Request()        { f.v.Store(true) }
func (f *StopFlag) Requested() bool { return f != nil && f.v.Load() }

// Discard drops every frame. It is the headless sink.
type Discard struct {
	Stop  *StopFlag
	shown atomic.Uint64
}

func NewDiscard(stop *StopFlag) *Discard { return &Discard{Stop: stop} }

func (d *Discard) Show(string, image.Image) error {
	d.shown.Add(1)
	return nil
}

func (d *Discard) StopRequested() bool { return d.Stop.Requested() }
func (d *Discard) Close() error        { return nil }

// Shown returns how many frames were passed to Show.
func (d *Discard) Shown() uint64 { return d.shown.Load() }
