package watcher

import (
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// debouncer coalesces bursts of change events into one handler call.
type debouncer struct {
	delay   time.Duration
	logger  hclog.Logger
	events  map[string]FileChangeEvent
	timer   *time.Timer
	mutex   sync.Mutex
	stopped bool
}

func newDebouncer(delay time.Duration, logger hclog.Logger) *debouncer {
	return &debouncer{
		delay:  delay,
		logger: logger,
		events: make(map[string]FileChangeEvent),
	}
}

func (d *debouncer) add(event FileChangeEvent, handler FileChangeHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}
	d.events[event.Path] = event
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.flush(handler)
	})
}

func (d *debouncer) flush(handler FileChangeHandler) {
	d.mutex.Lock()
	if d.stopped || len(d.events) == 0 {
		d.mutex.Unlock()
		return
	}
	changedFiles := make([]string, 0, len(d.events))
	for path, event := range d.events {
		// a file removed since the last batch has nothing left to analyze
		if event.Operation == "REMOVE" || event.Operation == "RENAME" {
			continue
		}
		changedFiles = append(changedFiles, path)
	}
	d.events = make(map[string]FileChangeEvent)
	d.mutex.Unlock()

	if len(changedFiles) == 0 {
		return
	}
	sort.Strings(changedFiles)
	if err := handler(changedFiles); err != nil {
		d.logger.Error("change handler failed", "files", len(changedFiles), "error", err)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
}
