// Package gstcam captures frames from a V4L2 camera through GStreamer.
//
// Pipeline:
//
//	v4l2src -> videoconvert -> videoscale -> capsfilter(RGB) -> appsink
//
// Frames are pulled synchronously, one per Read.
package gstcam

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
	"go.uber.org/zap"
)

var ErrShortBuffer = errors.New("gstcam: buffer smaller than frame")

// Config selects the device and the frame geometry delivered to Read.
type Config struct {
	Device string // e.g. /dev/video0; empty uses the v4l2src default
	Width  int
	Height int
	FPS    int // 0 leaves the rate to the device
}

// Caps returns the capsfilter string for cfg.
func (c Config) Caps() string {
	s := fmt.Sprintf("video/x-raw,format=RGB,width=%d,height=%d", c.Width, c.Height)
	if c.FPS > 0 {
		s += fmt.Sprintf(",framerate=%d/1", c.FPS)
	}
	return s
}

// Camera is a capture.Source backed by a playing GStreamer pipeline.
type Camera struct {
	cfg      Config
	log      *zap.Logger
	pipeline *gst.Pipeline
	sink     *app.Sink
	once     sync.Once
}

// Open builds the pipeline and sets it to PLAYING.
func Open(cfg Config, log *zap.Logger) (*Camera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("gstcam: invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if log == nil {
		log = zap.NewNop()
	}
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create pipeline: %w", err)
	}
	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create v4l2src: %w", err)
	}
	if cfg.Device != "" {
		src.SetProperty("device", cfg.Device)
	}
	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create videoconvert: %w", err)
	}
	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create videoscale: %w", err)
	}
	filter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("gstcam: create capsfilter: %w", err)
	}
	filter.SetProperty("caps", gst.NewCapsFromString(cfg.Caps()))

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("gstcam: create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)

	if err := pipeline.AddMany(src, convert, scale, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("gstcam: add elements: %w", err)
	}
	if err := gst.ElementLinkMany(src, convert, scale, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("gstcam: link: %w", err)
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("gstcam: start: %w", err)
	}
	c := &Camera{cfg: cfg, log: log, pipeline: pipeline, sink: sink}
	if err := c.checkBus(2 * time.Second); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info("camera playing", zap.String("device", cfg.Device), zap.String("caps", cfg.Caps()))
	return c, nil
}

// checkBus waits up to d for an error message from the starting pipeline.
func (c *Camera) checkBus(d time.Duration) error {
	bus := c.pipeline.GetPipelineBus()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageError:
			return fmt.Errorf("gstcam: %s", msg.ParseError().Error())
		case gst.MessageStateChanged:
			if _, s := msg.ParseStateChanged(); s == gst.StatePlaying {
				return nil
			}
		}
	}
	return nil
}

// Read blocks for the next sample. It returns false at end of stream or when
// the sample cannot be converted.
func (c *Camera) Read() (image.Image, bool) {
	sample := c.sink.PullSample()
	if sample == nil {
		c.log.Info("camera end of stream")
		return nil, false
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		c.log.Warn("camera sample without buffer")
		return nil, false
	}
	data := buffer.Map(gst.MapRead).Bytes()
	img, err := rgbToRGBA(data, c.cfg.Width, c.cfg.Height)
	buffer.Unmap()
	if err != nil {
		c.log.Warn("camera frame rejected", zap.Error(err))
		return nil, false
	}
	return img, true
}

// Close stops the pipeline. Safe to call twice.
func (c *Camera) Close() error {
	var err error
	c.once.Do(func() {
		err = c.pipeline.SetState(gst.StateNull)
	})
	return err
}

// rgbToRGBA copies packed RGB24 into a new opaque RGBA image.
func rgbToRGBA(data []byte, w, h int) (*image.RGBA, error) {
	if len(data) < w*h*3 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrShortBuffer, len(data), w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; j < w*h*3; i, j = i+4, j+3 {
		img.Pix[i] = data[j]
		img.Pix[i+1] = data[j+1]
		img.Pix[i+2] = data[j+2]
		img.Pix[i+3] = 255
	}
	return img, nil
}
