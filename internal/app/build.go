package app

import (
	"context"
	"fmt"
	"io"

	"cellscope-core/dna"
	"cellscope-core/microbe"
	"cellscope/internal/capture"
	"cellscope/internal/capture/gstcam"
	"cellscope/internal/config"
	"cellscope/internal/display"
	"cellscope/internal/report"
	"cellscope/internal/writers"
	"go.uber.org/zap"
)

// loadKnowledge loads the knowledge base and the sequence catalog, falling
// back to the built-in tables for empty paths. Microbes without a sequence
// are reported once; they log empty sequence columns.
func loadKnowledge(cfg config.KnowledgeConfig, log *zap.Logger) (*microbe.KnowledgeBase, *dna.Catalog, error) {
	kb, err := microbe.LoadFileOrDefault(cfg.Microbes)
	if err != nil {
		return nil, nil, fmt.Errorf("knowledge base: %w", err)
	}
	cat, err := dna.LoadFileOrDefault(cfg.Sequences)
	if err != nil {
		return nil, nil, fmt.Errorf("sequence catalog: %w", err)
	}
	for _, name := range kb.Names() {
		if cat.Sequence(name) == "" {
			log.Warn("microbe has no sequence", zap.String("microbe", name))
		}
	}
	return kb, cat, nil
}

func newSelector(cfg config.SelectorConfig) report.Selector {
	switch cfg.Kind {
	case "fixed":
		return report.FixedSelector(cfg.Names[0])
	case "sequence":
		return report.NewSequenceSelector(cfg.Names...)
	}
	return report.NewRandomSelector(cfg.Seed)
}

func openSource(ctx context.Context, cfg config.CaptureConfig, log *zap.Logger) (capture.Source, error) {
	var (
		src capture.Source
		err error
	)
	switch cfg.Source {
	case "folder":
		src, err = capture.NewFolder(ctx, cfg.Dir, capture.FolderOptions{
			Follow: cfg.Follow,
			Idle:   cfg.Idle,
			Logger: log,
		})
	default:
		src, err = gstcam.Open(gstcam.Config{
			Device: cfg.Device,
			Width:  cfg.Width,
			Height: cfg.Height,
			FPS:    cfg.FPS,
		}, log)
	}
	if err != nil {
		return nil, err
	}
	return capture.Limit(src, cfg.MaxFrames), nil
}

// openDisplay builds the display sink. When quit-key watching is on, typing
// the quit key followed by Enter on stdin requests a stop.
func openDisplay(cfg config.DisplayConfig, stdin io.Reader) (display.Sink, error) {
	stop := &display.StopFlag{}
	if cfg.QuitKey && stdin != nil {
		display.WatchKeys(stdin, display.QuitKey, stop)
	}
	if cfg.Mode == "save" {
		return display.NewFrameSaver(cfg.Dir, cfg.Format, cfg.JPEGQuality, cfg.Every, stop)
	}
	return display.NewDiscard(stop), nil
}

func logTargets(cfg config.LogConfig) []writers.Target {
	ts := []writers.Target{{Format: "csv", Path: cfg.Path}}
	if cfg.JSONL != "" {
		ts = append(ts, writers.Target{Format: "jsonl", Path: cfg.JSONL})
	}
	if cfg.SQLite != "" {
		ts = append(ts, writers.Target{Format: "sqlite", Path: cfg.SQLite})
	}
	return ts
}
