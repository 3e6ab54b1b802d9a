package configuration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileStore persists settings in a YAML file and reloads them when the file is changed by someone else.
//
//	global:
//	  askForKernelRestart: false
//	resources:
//	  work/analysis.ipynb:
//	    askForKernelRestart: true
type FileStore struct {
	log logger.Logger

	path string

	mu     sync.RWMutex
	layers *layers

	watcher   *fsnotify.Watcher
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewFileStore loads the settings file at path, which need not exist yet, and starts watching it.
func NewFileStore(path string) (*FileStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	store := &FileStore{
		path:   absPath,
		layers: newLayers(),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	config.InitLogger(&store.log, store)

	if err := store.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher for \"%s\": %w", absPath, err)
	}

	// The directory is watched rather than the file so that the watch survives the file being replaced.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch \"%s\": %w", filepath.Dir(absPath), err)
	}
	store.watcher = watcher

	go store.watch()

	return store, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Settings(_ context.Context, resource string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.layers.settings(resource), nil
}

func (s *FileStore) UpdateSetting(_ context.Context, key string, value interface{}, resource string, target Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.layers.set(key, value, resource, target); err != nil {
		return err
	}

	return s.writeLocked()
}

// Close stops watching the settings file. Every call returns once the watch has stopped.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.closeErr = s.watcher.Close()
	})

	<-s.done
	return s.closeErr
}

// writeLocked writes the settings to a temporary file and renames it over the settings file.
func (s *FileStore) writeLocked() error {
	encoded, err := yaml.Marshal(s.layers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	s.log.Debug("Wrote settings to \"%s\".", s.path)
	return nil
}

func (s *FileStore) reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Debug("Settings file \"%s\" does not exist. Using defaults.", s.path)
		s.mu.Lock()
		s.layers = newLayers()
		s.mu.Unlock()
		return nil
	} else if err != nil {
		return err
	}

	loaded := newLayers()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("%w: malformed settings file \"%s\": %v", ErrInvalidSettingValue, s.path, err)
	}

	s.mu.Lock()
	s.layers = loaded
	s.mu.Unlock()

	return nil
}

func (s *FileStore) watch() {
	defer close(s.done)

	for {
		select {
		case <-s.closed:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != s.path {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if err := s.reload(); err != nil {
				s.log.Warn("Failed to reload settings from \"%s\": %v", s.path, err)
				continue
			}

			s.log.Debug("Reloaded settings from \"%s\" after %s.", s.path, event.Op)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Error("Settings file watcher error: %v", err)
		}
	}
}
