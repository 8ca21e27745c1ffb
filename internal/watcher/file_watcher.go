package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"guardcheck/internal/config"
)

const defaultDebounce = 500 * time.Millisecond

type FileWatcher struct {
	watcher     *fsnotify.Watcher
	config      *config.Config
	logger      hclog.Logger
	debouncer   *debouncer

	// watchedDirs grows from the event loop when directories are created
	mutex       sync.Mutex
	watchedDirs map[string]bool
}

type FileChangeEvent struct {
	Path      string
	Operation string
	Timestamp time.Time
}

// FileChangeHandler receives the source files changed since the last call,
// sorted by path.
type FileChangeHandler func([]string) error

func NewFileWatcher(cfg *config.Config, logger hclog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw := &FileWatcher{
		watcher:     watcher,
		config:      cfg,
		logger:      logger.Named("watcher"),
		watchedDirs: make(map[string]bool),
	}
	fw.debouncer = newDebouncer(defaultDebounce, fw.logger)
	return fw, nil
}

// Watch registers every directory below paths and starts delivering batches
// of changed C/C++ files to handler.
func (fw *FileWatcher) Watch(paths []string, handler FileChangeHandler) error {
	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", path, err)
		}
	}
	go fw.eventLoop(handler)
	return nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if walkPath != path && fw.shouldSkipDir(walkPath) {
			return filepath.SkipDir
		}
		return fw.watchDir(walkPath)
	})
}

func (fw *FileWatcher) watchDir(dir string) error {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	if fw.watchedDirs[dir] {
		return nil
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	fw.watchedDirs[dir] = true
	fw.logger.Trace("watching directory", "dir", dir)
	return nil
}

func (fw *FileWatcher) eventLoop(handler FileChangeHandler) {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, handler)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event, handler FileChangeHandler) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.addPath(event.Name); err != nil {
				fw.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if !fw.isSourceFile(event.Name) || fw.shouldSkipFile(event.Name) {
		return
	}
	changeEvent := FileChangeEvent{
		Path:      event.Name,
		Operation: fw.eventOpToString(event.Op),
		Timestamp: time.Now(),
	}
	fw.logger.Debug("file changed", "file", changeEvent.Path, "op", changeEvent.Operation)
	fw.debouncer.add(changeEvent, handler)
}

func (fw *FileWatcher) isSourceFile(path string) bool {
	if fw.config == nil {
		return false
	}
	return fw.config.ShouldAnalyze(path)
}

func (fw *FileWatcher) shouldSkipDir(path string) bool {
	defaultExclusions := []string{
		".git", ".svn", ".vscode", ".idea", "node_modules", "CMakeFiles", "tmp", "temp",
	}
	dirName := filepath.Base(path)
	for _, excluded := range defaultExclusions {
		if dirName == excluded {
			return true
		}
	}
	return fw.config != nil && fw.config.IsExcluded(path)
}

// shouldSkipFile filters editor backups and swap files.
func (fw *FileWatcher) shouldSkipFile(path string) bool {
	filename := filepath.Base(path)
	if strings.HasPrefix(filename, ".") || strings.HasPrefix(filename, "#") {
		return true
	}
	for _, suffix := range []string{".tmp", "~", ".swp", ".swo", ".orig"} {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) eventOpToString(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return "CREATE"
	case op&fsnotify.Write == fsnotify.Write:
		return "WRITE"
	case op&fsnotify.Remove == fsnotify.Remove:
		return "REMOVE"
	case op&fsnotify.Rename == fsnotify.Rename:
		return "RENAME"
	case op&fsnotify.Chmod == fsnotify.Chmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

func (fw *FileWatcher) Close() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) GetWatchedPaths() []string {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	paths := make([]string, 0, len(fw.watchedDirs))
	for path := range fw.watchedDirs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
