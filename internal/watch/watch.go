// Package watch drives the re-check-on-change mode: a thin event layer
// over fsnotify plus a Runner that debounces bursts of notifications,
// re-arms paths that editors replace, and invokes a callback with the
// files that actually changed.
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOp is a bitmask of filesystem operations observed on a path.
type WatchOp uint32

const (
	OpCreate WatchOp = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

var opTable = []struct {
	fs fsnotify.Op
	op WatchOp
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpWrite},
	{fsnotify.Remove, OpRemove},
	{fsnotify.Rename, OpRename},
	{fsnotify.Chmod, OpChmod},
}

func fromFsnotify(fsOp fsnotify.Op) WatchOp {
	var op WatchOp
	for _, e := range opTable {
		if fsOp&e.fs != 0 {
			op |= e.op
		}
	}

	return op
}

// Event is one filesystem notification.
type Event struct {
	Path string
	Op   WatchOp
}

// Changed reports whether the event should trigger a re-check: the file
// was written, created, or replaced.
func (e Event) Changed() bool {
	return e.Op&(OpCreate|OpWrite|OpRename) != 0
}

// Watcher delivers OS-native filesystem notifications for watched paths.
// Both channels close when the watcher is closed.
type Watcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error
}

// New creates a watcher and starts its delivery loop.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &Watcher{w: w, evC: make(chan Event, 128), erC: make(chan error, 1)}
	go fw.loop()

	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.evC)
	defer close(fw.erC)

	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}

			fw.evC <- Event{Path: ev.Name, Op: fromFsnotify(ev.Op)}

		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}

			fw.erC <- err
		}
	}
}

func (fw *Watcher) Events() <-chan Event     { return fw.evC }
func (fw *Watcher) Errors() <-chan error     { return fw.erC }
func (fw *Watcher) Add(name string) error    { return fw.w.Add(name) }
func (fw *Watcher) Remove(name string) error { return fw.w.Remove(name) }
func (fw *Watcher) Close() error             { return fw.w.Close() }

// Runner watches a fixed set of files and calls run with the batch of
// changed paths once a quiet period has elapsed. Events for paths outside
// the set are ignored, and changed paths are re-added before each run
// because editors that write-and-rename drop them from the kernel watch
// list.
type Runner struct {
	w        *Watcher
	files    map[string]bool
	debounce time.Duration
	run      func(changed []string)
	onErr    func(error)
}

// NewRunner creates a runner over the given files. run is called once
// up front with a nil slice, then again after every settled batch of
// changes. onErr receives watcher errors and may be nil.
func NewRunner(files []string, debounce time.Duration, run func(changed []string), onErr func(error)) (*Runner, error) {
	w, err := New()
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(files))
	for _, f := range files {
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, err
		}

		set[f] = true
	}

	return &Runner{w: w, files: set, debounce: debounce, run: run, onErr: onErr}, nil
}

// Run performs the initial run, then blocks dispatching change batches
// until the runner is closed.
func (r *Runner) Run() {
	r.run(nil)

	dirty := make(map[string]bool)

	var timer <-chan time.Time

	for {
		select {
		case ev, ok := <-r.w.Events():
			if !ok {
				return
			}

			if !r.files[ev.Path] || !ev.Changed() {
				continue
			}

			dirty[ev.Path] = true
			timer = time.After(r.debounce)

		case <-timer:
			changed := make([]string, 0, len(dirty))
			for p := range dirty {
				changed = append(changed, p)
				_ = r.w.Add(p)
			}

			dirty = make(map[string]bool)
			timer = nil

			r.run(changed)

		case err, ok := <-r.w.Errors():
			if !ok {
				return
			}

			if r.onErr != nil {
				r.onErr(err)
			}
		}
	}
}

// Close stops the runner; Run returns once the event channel drains.
func (r *Runner) Close() error { return r.w.Close() }
