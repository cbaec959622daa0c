package app

import (
	"context"
	"fmt"

	"cellscope/internal/config"
	"cellscope/internal/logging"
	"cellscope/internal/metrics"
	"cellscope/internal/pipeline"
	"cellscope/internal/report"
	"cellscope/internal/session"
	"cellscope/internal/writers"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type runFlags struct {
	configPath string
	cfg        config.Config
	noQuitKey  bool
}

// bind registers the run flags. Flag defaults mirror config.Default; only
// flags set on the command line override the configuration file.
func (f *runFlags) bind(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")

	fs.StringVar(&f.cfg.Capture.Source, "source", d.Capture.Source, "frame source: camera | folder")
	fs.StringVar(&f.cfg.Capture.Device, "device", d.Capture.Device, "V4L2 device, e.g. /dev/video0")
	fs.IntVar(&f.cfg.Capture.Width, "width", d.Capture.Width, "camera frame width")
	fs.IntVar(&f.cfg.Capture.Height, "height", d.Capture.Height, "camera frame height")
	fs.IntVar(&f.cfg.Capture.FPS, "fps", d.Capture.FPS, "camera frame rate (0 = device default)")
	fs.StringVarP(&f.cfg.Capture.Dir, "dir", "d", d.Capture.Dir, "image folder for --source folder")
	fs.BoolVar(&f.cfg.Capture.Follow, "follow", d.Capture.Follow, "keep reading new files added to --dir")
	fs.DurationVar(&f.cfg.Capture.Idle, "idle", d.Capture.Idle, "stop following after this long without new files (0 = never)")
	fs.IntVarP(&f.cfg.Capture.MaxFrames, "max-frames", "n", d.Capture.MaxFrames, "stop after N frames (0 = unlimited)")

	fs.StringVar(&f.cfg.Display.Mode, "display", d.Display.Mode, "display sink: none | save")
	fs.StringVar(&f.cfg.Display.Dir, "frames-dir", d.Display.Dir, "directory for saved frames")
	fs.StringVar(&f.cfg.Display.Format, "frames-format", d.Display.Format, "saved frame format: png | jpeg")
	fs.IntVar(&f.cfg.Display.Every, "every", d.Display.Every, "save every Nth frame")
	fs.BoolVar(&f.noQuitKey, "no-quit-key", false, "do not watch stdin for the quit key")
	fs.BoolVar(&f.cfg.Display.Styled, "styled", d.Display.Styled, "draw the final report as a styled box")

	fs.StringVarP(&f.cfg.Log.Path, "log", "o", d.Log.Path, "CSV log path (truncated at start)")
	fs.StringVar(&f.cfg.Log.JSONL, "jsonl", d.Log.JSONL, "also write JSON lines to this path ('-' = stdout)")
	fs.StringVar(&f.cfg.Log.SQLite, "sqlite", d.Log.SQLite, "also archive reports into this SQLite database")

	fs.StringVar(&f.cfg.Knowledge.Microbes, "microbes", d.Knowledge.Microbes, "knowledge base YAML (default: built-in)")
	fs.StringVar(&f.cfg.Knowledge.Sequences, "sequences", d.Knowledge.Sequences, "sequence catalog YAML or FASTA (default: built-in)")

	fs.StringVar(&f.cfg.Selector.Kind, "selector", d.Selector.Kind, "microbe selection: random | fixed | sequence")
	fs.Uint64Var(&f.cfg.Selector.Seed, "seed", d.Selector.Seed, "random selector seed (0 = unseeded)")
	fs.StringSliceVar(&f.cfg.Selector.Names, "names", d.Selector.Names, "names for the fixed or sequence selector")

	fs.StringVar(&f.cfg.Metrics.Addr, "metrics-addr", d.Metrics.Addr, "serve Prometheus metrics on host:port")

	fs.StringVar(&f.cfg.Logging.Level, "log-level", d.Logging.Level, "debug | info | warn | error")
	fs.StringVar(&f.cfg.Logging.Format, "log-format", d.Logging.Format, "console | json")
}

// resolve loads the configuration file and applies every changed flag.
func (f *runFlags) resolve(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("source", func() { cfg.Capture.Source = f.cfg.Capture.Source })
	set("device", func() { cfg.Capture.Device = f.cfg.Capture.Device })
	set("width", func() { cfg.Capture.Width = f.cfg.Capture.Width })
	set("height", func() { cfg.Capture.Height = f.cfg.Capture.Height })
	set("fps", func() { cfg.Capture.FPS = f.cfg.Capture.FPS })
	set("dir", func() { cfg.Capture.Dir = f.cfg.Capture.Dir })
	set("follow", func() { cfg.Capture.Follow = f.cfg.Capture.Follow })
	set("idle", func() { cfg.Capture.Idle = f.cfg.Capture.Idle })
	set("max-frames", func() { cfg.Capture.MaxFrames = f.cfg.Capture.MaxFrames })
	set("display", func() { cfg.Display.Mode = f.cfg.Display.Mode })
	set("frames-dir", func() { cfg.Display.Dir = f.cfg.Display.Dir })
	set("frames-format", func() { cfg.Display.Format = f.cfg.Display.Format })
	set("every", func() { cfg.Display.Every = f.cfg.Display.Every })
	set("no-quit-key", func() { cfg.Display.QuitKey = !f.noQuitKey })
	set("styled", func() { cfg.Display.Styled = f.cfg.Display.Styled })
	set("log", func() { cfg.Log.Path = f.cfg.Log.Path })
	set("jsonl", func() { cfg.Log.JSONL = f.cfg.Log.JSONL })
	set("sqlite", func() { cfg.Log.SQLite = f.cfg.Log.SQLite })
	set("microbes", func() { cfg.Knowledge.Microbes = f.cfg.Knowledge.Microbes })
	set("sequences", func() { cfg.Knowledge.Sequences = f.cfg.Knowledge.Sequences })
	set("selector", func() { cfg.Selector.Kind = f.cfg.Selector.Kind })
	set("seed", func() { cfg.Selector.Seed = f.cfg.Selector.Seed })
	set("names", func() { cfg.Selector.Names = f.cfg.Selector.Names })
	set("metrics-addr", func() { cfg.Metrics.Addr = f.cfg.Metrics.Addr })
	set("log-level", func() { cfg.Logging.Level = f.cfg.Logging.Level })
	set("log-format", func() { cfg.Logging.Format = f.cfg.Logging.Format })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the detection loop",
		Example: `  cellscope run --device /dev/video0
  cellscope run --source folder --dir ./frames --display save --frames-dir ./annotated
  cellscope run -c cellscope.yaml --jsonl - --metrics-addr :9108`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd.Flags())
			if err != nil {
				return usageErr(err)
			}
			return runSession(cmd, cfg)
		},
	}
	f.bind(cmd.Flags())
	return cmd
}

// runSession wires one detection session and prints its summary.
func runSession(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	base, err := logging.New(stderr, logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return usageErr(err)
	}
	defer func() { _ = base.Sync() }()
	sessionID := uuid.NewString()
	log := base.With(zap.String("session_id", sessionID))

	kb, cat, err := loadKnowledge(cfg.Knowledge, log)
	if err != nil {
		return usageErr(err)
	}
	if cfg.Selector.Kind == "fixed" && !kb.Has(cfg.Selector.Names[0]) {
		log.Warn("fixed microbe is not in the knowledge base", zap.String("microbe", cfg.Selector.Names[0]))
	}

	src, err := openSource(ctx, cfg.Capture, log)
	if err != nil {
		return runtimeErr(fmt.Errorf("open capture: %w", err))
	}
	disp, err := openDisplay(cfg.Display, cmd.InOrStdin())
	if err != nil {
		_ = src.Close()
		return runtimeErr(err)
	}
	sink, err := writers.Open(ctx, sessionID, logTargets(cfg.Log)...)
	if err != nil {
		_ = src.Close()
		_ = disp.Close()
		return runtimeErr(err)
	}

	col := metrics.NewCollector(cfg.Metrics.Namespace)
	runner, err := pipeline.New(pipeline.Config{
		Source:   src,
		Synth:    report.NewSynthesizer(kb, cat, newSelector(cfg.Selector), report.WithLogger(log)),
		Display:  disp,
		Log:      sink,
		Observer: col,
		Logger:   log,
	})
	if err != nil {
		_ = src.Close()
		_ = disp.Close()
		_ = sink.Close()
		return runtimeErr(err)
	}
	log.Info("session starting",
		zap.String("source", cfg.Capture.Source),
		zap.String("log", cfg.Log.Path),
		zap.Int("microbes", kb.Len()),
		zap.String("selector", cfg.Selector.Kind),
	)

	var sum session.Summary
	g, gctx := errgroup.WithContext(ctx)
	loopDone, stopServer := context.WithCancel(context.Background())
	defer stopServer()
	g.Go(func() error {
		defer stopServer()
		var err error
		sum, err = runner.Run(gctx)
		return err
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(loopDone, cfg.Metrics.Addr, col, log)
		})
	}
	runErr := g.Wait()

	if err := session.Render(stdout, sum, cfg.Display.Styled); err != nil && !writers.IsBrokenPipe(err) {
		return runtimeErr(err)
	}
	log.Info("session finished", zap.Int("frames", runner.Frames()), zap.Bool("no_detections", sum.NoDetections))
	if runErr != nil {
		return runtimeErr(runErr)
	}
	return nil
}
