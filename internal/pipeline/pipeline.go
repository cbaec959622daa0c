// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"cellscope-core/vision"
	"cellscope/internal/capture"
	"cellscope/internal/display"
	"cellscope/internal/report"
	"cellscope/internal/session"
	"cellscope/internal/writers"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Frame is the working value of one loop iteration.
type Frame struct {
	Seq        int
	TraceID    string
	Image      image.Image
	CapturedAt time.Time
	Cells      int
	Microbe    string
}

// Observer receives loop events, e.g. for metrics. All methods are called
// from the loop goroutine.
type Observer interface {
	FrameProcessed(rec report.Record, elapsed time.Duration)
	LogFailed()
	StateChanged(from, to string)
}

// Config wires the collaborators of a Runner. Source, Synth and Log are
// required.
type Config struct {
	Source    capture.Source
	Extractor vision.Extractor // nil uses vision.EdgeExtractor
	Synth     *report.Synthesizer
	Display   display.Sink // nil discards frames
	Log       writers.Sink
	Observer  Observer
	Logger    *zap.Logger
	Window    string // defaults to display.WindowName
}

// Runner owns one session. It is single-use.
type Runner struct {
	cfg     Config
	log     *zap.Logger
	session *session.Aggregator
	state   State
	frames  int
}

func New(cfg Config) (*Runner, error) {
	switch {
	case cfg.Source == nil:
		return nil, errors.New("pipeline: nil capture source")
	case cfg.Synth == nil:
		return nil, errors.New("pipeline: nil synthesizer")
	case cfg.Log == nil:
		return nil, errors.New("pipeline: nil log sink")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = vision.EdgeExtractor{}
	}
	if cfg.Display == nil {
		cfg.Display = display.NewDiscard(nil)
	}
	if cfg.Window == "" {
		cfg.Window = display.WindowName
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &Runner{cfg: cfg, log: cfg.Logger, session: session.New()}

	cfg.Synth.Logger = cfg.Log
	cfg.Synth.Collector = r.session
	if cfg.Synth.Overlay == nil {
		cfg.Synth.Overlay = display.TextOverlay{}
	}
	return r, nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State { return r.state }

// Frames returns how many frames completed the loop.
func (r *Runner) Frames() int { return r.frames }

// Session exposes the aggregator, for inspection after Run.
func (r *Runner) Session() *session.Aggregator { return r.session }

func (r *Runner) enter(s State) {
	from := r.state
	r.state = s
	r.log.Info("pipeline state", zap.Stringer("from", from), zap.Stringer("to", s))
	if r.cfg.Observer != nil {
		r.cfg.Observer.StateChanged(from.String(), s.String())
	}
}

// Run processes frames until the source is exhausted, a stop is requested
// (display sink or ctx), or a fatal error occurs. The summary is computed in
// every case; resources are released before Run returns. A stop request is
// not an error.
func (r *Runner) Run(ctx context.Context) (session.Summary, error) {
	if r.state != Initializing {
		return session.Summary{}, fmt.Errorf("pipeline: run in state %s", r.state)
	}
	if r.cfg.Observer != nil {
		r.cfg.Observer.StateChanged("", Initializing.String())
	}
	r.enter(Running)
	runErr := r.loop(ctx)

	r.enter(Draining)
	sum := r.session.Summary()

	r.enter(Terminated)
	if err := r.release(); err != nil && runErr == nil {
		runErr = err
	}
	return sum, runErr
}

func (r *Runner) loop(ctx context.Context) error {
	for {
		img, ok := r.cfg.Source.Read()
		if !ok {
			r.log.Info("capture ended", zap.String("reason", "source exhausted or failed"), zap.Int("frames", r.frames))
			return nil
		}
		start := time.Now()
		f := Frame{
			Seq:        r.frames + 1,
			TraceID:    uuid.NewString(),
			Image:      img,
			CapturedAt: start,
		}
		f.Cells = len(r.cfg.Extractor.Extract(img))

		rec, shown, err := r.cfg.Synth.Report(f.Seq, img, f.Cells)
		if err != nil {
			if errors.Is(err, report.ErrLogAppend) && r.cfg.Observer != nil {
				r.cfg.Observer.LogFailed()
			}
			r.log.Error("report failed", zap.Int("frame", f.Seq), zap.Error(err))
			return err
		}
		f.Microbe = rec.Microbe

		if err := r.cfg.Display.Show(r.cfg.Window, shown); err != nil {
			return fmt.Errorf("display frame %d: %w", f.Seq, err)
		}
		r.frames++
		if r.cfg.Observer != nil {
			r.cfg.Observer.FrameProcessed(rec, time.Since(start))
		}
		r.log.Debug("frame done",
			zap.Int("frame", f.Seq),
			zap.String("trace_id", f.TraceID),
			zap.Int("cells", f.Cells),
			zap.String("microbe", f.Microbe),
			zap.String("risk", string(rec.Risk)),
		)

		if r.stopRequested(ctx) {
			r.log.Info("stop requested", zap.Int("frames", r.frames))
			return nil
		}
	}
}

// stopRequested is the single cooperative cancellation point of the loop.
func (r *Runner) stopRequested(ctx context.Context) bool {
	return r.cfg.Display.StopRequested() || ctx.Err() != nil
}

func (r *Runner) release() error {
	var errs []error
	if err := r.cfg.Source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close capture: %w", err))
	}
	if err := r.cfg.Display.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close display: %w", err))
	}
	if err := r.cfg.Log.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log: %w", err))
	}
	return errors.Join(errs...)
}
