package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"growthos/internal/config"
	"growthos/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptSet holds the current gap analysis prompts. It is safe for concurrent use.
type PromptSet struct {
	mu     sync.RWMutex
	system string
	user   string
}

// NewPromptSet creates a prompt set, falling back to the built-in prompts for empty values
func NewPromptSet(system, user string) *PromptSet {
	ps := &PromptSet{}
	ps.Set(system, user)
	return ps
}

// Get returns the current system and user prompts
func (ps *PromptSet) Get() (system, user string) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.system, ps.user
}

// Set replaces both prompts. Empty values restore the defaults.
func (ps *PromptSet) Set(system, user string) {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if user == "" {
		user = DefaultUserPrompt
	}
	ps.mu.Lock()
	ps.system = system
	ps.user = user
	ps.mu.Unlock()
}

// PromptWatcher reloads prompt files into a PromptSet when they change on disk
type PromptWatcher struct {
	mu sync.Mutex

	prompts config.PromptConfig
	target  *PromptSet

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	done       chan struct{}

	logger  *errors.Logger
	running bool
}

// NewPromptWatcher creates a watcher for the prompt files in cfg
func NewPromptWatcher(cfg config.PromptConfig, target *PromptSet, debounceDelay time.Duration, logger *errors.Logger) *PromptWatcher {
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}
	return &PromptWatcher{
		prompts:       cfg,
		target:        target,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Files returns the prompt files being watched
func (pw *PromptWatcher) Files() []string {
	var files []string
	if pw.prompts.SystemFile != "" {
		files = append(files, pw.prompts.SystemFile)
	}
	if pw.prompts.UserFile != "" {
		files = append(files, pw.prompts.UserFile)
	}
	return files
}

// Start begins watching. It is an error to start a watcher with no files.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	files := pw.Files()
	if len(files) == 0 {
		return fmt.Errorf("no prompt files configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch directories so editors that replace files atomically are still seen
	dirs := make(map[string]struct{})
	for _, f := range files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	pw.fsWatcher = watcher
	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt file watcher started",
		"files", files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.running = false
	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.mu.Unlock()

	err := pw.fsWatcher.Close()
	<-pw.done
	if err != nil {
		pw.logger.LogError(err, "Failed to close prompt file watcher")
		return err
	}
	pw.logger.Info("Prompt file watcher stopped")
	return nil
}

// Reload reads the prompt files and applies them. On failure the current prompts are kept.
func (pw *PromptWatcher) Reload() error {
	loaded, err := config.LoadPromptFiles(pw.prompts)
	if err != nil {
		return err
	}

	system, user := pw.target.Get()
	if loaded.System != "" {
		system = loaded.System
	}
	if loaded.User != "" {
		user = loaded.User
	}
	pw.target.Set(system, user)
	return nil
}

func (pw *PromptWatcher) watchLoop() {
	defer close(pw.done)
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.isPromptEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt file watcher error")

		case <-pw.reloadChan:
			if err := pw.Reload(); err != nil {
				pw.logger.LogError(err, "Failed to reload prompt files, keeping previous prompts")
				continue
			}
			pw.logger.Info("Prompt files reloaded", "files", pw.Files())

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) isPromptEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	for _, f := range pw.Files() {
		if sameFile(event.Name, f) {
			return true
		}
	}
	return false
}

func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
