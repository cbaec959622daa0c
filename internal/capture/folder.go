package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImagePath reports whether path has a decodable image extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// FolderOptions configures a Folder source.
type FolderOptions struct {
	// Follow keeps the source open after the existing files are consumed and
	// yields files created in the directory later.
	Follow bool
	// Idle ends a following source after no new file arrived for this long.
	// Zero waits until the context is cancelled or Close is called.
	Idle time.Duration
	// Settle is how long a new file must stay unmodified before it is read.
	Settle time.Duration
	Logger *zap.Logger
}

// Folder reads image files from a directory in file-name order. Files that
// fail to decode are skipped with a warning.
type Folder struct {
	dir     string
	opts    FolderOptions
	log     *zap.Logger
	queue   []string
	watcher *fsnotify.Watcher
	arrived chan string
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewFolder lists dir and, in follow mode, starts watching it until ctx is
// cancelled or Close is called.
func NewFolder(ctx context.Context, dir string, opts FolderOptions) (*Folder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("capture folder: %w", err)
	}
	f := &Folder{dir: dir, opts: opts, log: opts.Logger}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	for _, e := range entries {
		if !e.IsDir() && IsImagePath(e.Name()) {
			f.queue = append(f.queue, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(f.queue)

	if !opts.Follow {
		return f, nil
	}
	if f.opts.Settle <= 0 {
		f.opts.Settle = 200 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("capture folder: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("capture folder: watch %s: %w", dir, err)
	}
	f.watcher = w
	f.arrived = make(chan string, 16)
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	go f.watch(ctx)
	return f, nil
}

// watch forwards settled new image files to arrived. It closes arrived on
// exit so a blocked Read returns.
func (f *Folder) watch(ctx context.Context) {
	defer close(f.done)
	defer close(f.arrived)

	seen := make(map[string]bool, len(f.queue))
	for _, p := range f.queue {
		seen[p] = true
	}
	pending := make(map[string]time.Time)
	tick := time.NewTicker(max(f.opts.Settle/2, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stop:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsImagePath(ev.Name) || seen[ev.Name] {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn("folder watcher error", zap.Error(err))
		case now := <-tick.C:
			var ready []string
			for p, at := range pending {
				if now.Sub(at) >= f.opts.Settle {
					ready = append(ready, p)
				}
			}
			sort.Strings(ready)
			for _, p := range ready {
				delete(pending, p)
				seen[p] = true
				select {
				case f.arrived <- p:
				case <-ctx.Done():
					return
				case <-f.stop:
					return
				}
			}
		}
	}
}

func (f *Folder) Read() (image.Image, bool) {
	for {
		path, ok := f.nextPath()
		if !ok {
			return nil, false
		}
		img, err := decodeFile(path)
		if err != nil {
			f.log.Warn("skipping undecodable frame", zap.String("path", path), zap.Error(err))
			continue
		}
		return img, true
	}
}

func (f *Folder) nextPath() (string, bool) {
	if len(f.queue) > 0 {
		p := f.queue[0]
		f.queue = f.queue[1:]
		return p, true
	}
	if f.arrived == nil {
		return "", false
	}
	var idle <-chan time.Time
	if f.opts.Idle > 0 {
		t := time.NewTimer(f.opts.Idle)
		defer t.Stop()
		idle = t.C
	}
	select {
	case p, ok := <-f.arrived:
		return p, ok
	case <-idle:
		f.log.Info("folder idle, ending capture", zap.Duration("idle", f.opts.Idle))
		return "", false
	}
}

// Close stops the watcher and waits for it to exit. Safe to call twice.
func (f *Folder) Close() error {
	var err error
	f.once.Do(func() {
		if f.watcher == nil {
			return
		}
		close(f.stop)
		<-f.done
		err = f.watcher.Close()
	})
	return err
}

func decodeFile(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	return img, err
}
