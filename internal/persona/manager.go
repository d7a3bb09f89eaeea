package persona

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the loaded persona packs and serves the active one. Reload
// swaps packs atomically; readers never see a half-applied pack.
type Manager struct {
	dir    string
	active string
	logger *slog.Logger

	mu      sync.RWMutex
	packs   map[string]*Pack
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewManager loads all persona files from dir. A missing or empty directory
// is fine: the manager then serves only built-in defaults.
func NewManager(dir, active string, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		dir:    dir,
		active: active,
		logger: logger,
		packs:  make(map[string]*Pack),
		done:   make(chan struct{}),
	}

	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Active returns the active pack, or nil when none is loaded; callers treat
// nil as all-defaults.
func (m *Manager) Active() *Pack {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.packs[m.active]
}

// Names lists the loaded pack names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.packs))
	for name := range m.packs {
		names = append(names, name)
	}
	return names
}

// Watch starts hot reloading: any change to a YAML file under the persona
// directory reloads all packs. Call Stop to clean up.
func (m *Manager) Watch() error {
	if m.dir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating persona watcher: %w", err)
	}
	if err := w.Add(m.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching persona dir: %w", err)
	}
	m.watcher = w

	go m.loop()
	m.logger.Info("watching persona packs", "dir", m.dir)
	return nil
}

// Stop shuts down the watcher.
func (m *Manager) Stop() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		<-m.done
	}
}

func (m *Manager) loop() {
	defer close(m.done)
	for {
		select {
		case evt, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isPersonaFile(evt.Name) {
				continue
			}
			if err := m.reload(); err != nil {
				m.logger.Warn("persona reload failed, keeping previous packs", "error", err)
			} else {
				m.logger.Info("persona packs reloaded", "trigger", filepath.Base(evt.Name))
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("persona watcher error", "error", err)
		}
	}
}

// reload loads every persona file in the directory into a fresh map and
// swaps it in. On any parse error the previous map is kept.
func (m *Manager) reload() error {
	if m.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading persona dir: %w", err)
	}

	packs := make(map[string]*Pack)
	for _, entry := range entries {
		if entry.IsDir() || !isPersonaFile(entry.Name()) {
			continue
		}
		pack, err := LoadPack(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return err
		}
		packs[pack.Name] = pack
	}

	m.mu.Lock()
	m.packs = packs
	m.mu.Unlock()
	return nil
}

func isPersonaFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
