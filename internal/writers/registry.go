// internal/writers/registry.go
package writers

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownFormat = errors.New("unknown log format")

// Target names one sink to open.
type Target struct {
	Format string // "csv" | "jsonl" | "sqlite"
	Path   string
}

// Opener creates a sink for a path.
type Opener func(ctx context.Context, path, sessionID string) (Sink, error)

// Sink registry (format -> opener). Register in init() blocks; last wins.
var openers = map[string]Opener{}

func Register(format string, fn Opener) { openers[format] = fn }

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(openers))
	for f := range openers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Open opens one sink per target and fans out to them. On error every sink
// opened so far is closed.
func Open(ctx context.Context, sessionID string, targets ...Target) (Sink, error) {
	var m Multi
	for _, t := range targets {
		fn, ok := openers[t.Format]
		if !ok {
			_ = m.Close()
			return nil, fmt.Errorf("%w %q (no writer registered)", ErrUnknownFormat, t.Format)
		}
		s, err := fn(ctx, t.Path, sessionID)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("open %s log: %w", t.Format, err)
		}
		m = append(m, s)
	}
	if len(m) == 1 {
		return m[0], nil
	}
	return m, nil
}

func init() {
	Register("csv", func(_ context.Context, path, _ string) (Sink, error) { return CreateCSV(path) })
	Register("jsonl", func(_ context.Context, path, id string) (Sink, error) { return CreateJSONL(path, id) })
	Register("sqlite", func(ctx context.Context, path, id string) (Sink, error) { return OpenSQLite(ctx, path, id) })
}
