package ags

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/qntx-ags/errors"
	"github.com/teranos/qntx-ags/logger"
)

// WatchOptions configures a directory Watcher.
type WatchOptions struct {
	Debounce          time.Duration // quiet period after the last write before a file is handled
	MaxFilesPerMinute int           // 0 = unlimited
}

// FileHandler is called once per settled .ags file. Calls never overlap.
type FileHandler func(ctx context.Context, path string)

// Watcher re-ingests .ags files as they are written into a directory.
type Watcher struct {
	dir      string
	opts     WatchOptions
	handle   FileHandler
	watcher  *fsnotify.Watcher
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger
	ready    chan string
	done     chan struct{}
	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopOnce sync.Once
}

// NewWatcher starts watching dir. Events arriving before Run are kept.
func NewWatcher(dir string, opts WatchOptions, handle FileHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	w := &Watcher{
		dir:     dir,
		opts:    opts,
		handle:  handle,
		watcher: fw,
		logger:  logger.ComponentLogger("watch"),
		ready:   make(chan string, 64),
		done:    make(chan struct{}),
		timers:  make(map[string]*time.Timer),
	}
	if opts.MaxFilesPerMinute > 0 {
		// Burst of 1 so a bulk copy is spread over the minute
		w.limiter = rate.NewLimiter(rate.Limit(float64(opts.MaxFilesPerMinute)/60.0), 1)
	}
	return w, nil
}

// Run dispatches settled files to the handler until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.dispatch(ctx)
	}()
	defer wg.Wait()
	defer cancel()

	w.logger.Infow("Watching for AGS files", logger.FieldPath, w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsAGSFile(event.Name) {
				continue
			}
			w.logger.Debugw("AGS file changed", logger.FieldFile, event.Name, "op", event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.ready:
			if w.limiter != nil {
				if err := w.limiter.Wait(ctx); err != nil {
					return
				}
			}
			w.handle(logger.WithComponent(ctx, "ix.watch"), path)
		}
	}
}

func (w *Watcher) stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, t := range w.timers {
			t.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.watcher.Close()
	})
}

// Close releases the watcher without running it.
func (w *Watcher) Close() error {
	w.stop()
	return nil
}
