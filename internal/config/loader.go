package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading and hot-reloading.
type Loader struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	onChange func(*Config)
	logger   *logging.Logger
	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewLoader creates a new configuration loader.
func NewLoader(path string) *Loader {
	return &Loader{
		path:     path,
		logger:   logging.NewLogger(),
		stopChan: make(chan struct{}),
	}
}

// Load reads the configuration from the file.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.ErrConfigNotFound{Path: l.path}
		}
		return nil, &errors.ErrFileRead{Path: l.path, Err: err}
	}

	config, err := Parse(substituteEnvVars(content))
	if err != nil {
		return nil, err
	}

	l.config = config
	return config, nil
}

// Reload forces a reload of the configuration and notifies the change
// callback.
func (l *Loader) Reload() (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	onChange := l.onChange
	l.mu.RUnlock()

	if onChange != nil {
		onChange(config)
	}

	return config, nil
}

// Get returns the current configuration.
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// SetOnChange sets a callback to be called when configuration changes.
func (l *Loader) SetOnChange(fn func(*Config)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// StartWatcher watches the config file and reloads on writes.
func (l *Loader) StartWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(l.path); err != nil {
		watcher.Close()
		return err
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	go func() {
		for {
			select {
			case <-l.stopChan:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					if _, err := l.Reload(); err != nil {
						l.logger.Warn("config reload failed", "path", l.path, "error", err.Error())
					} else {
						l.logger.Info("config reloaded", "path", l.path)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watcher error", "error", err.Error())
			}
		}
	}()

	return nil
}

// StopWatcher stops the file watcher.
func (l *Loader) StopWatcher() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.mu.RLock()
		watcher := l.watcher
		l.mu.RUnlock()
		if watcher != nil {
			watcher.Close()
		}
	})
}

// Parse parses configuration from a byte slice, applying defaults first.
func Parse(data []byte) (*Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, &errors.ErrConfigParse{Err: err}
	}

	if err := config.Validate(); err != nil {
		return nil, &errors.ErrConfigValidation{Err: err}
	}

	return config, nil
}

// LoadFromEnv loads configuration using the path from REELSYNC_CONFIG_PATH
// or the default config.yaml.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("REELSYNC_CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return NewLoader(path).Load()
}

func substituteEnvVars(content []byte) []byte {
	return []byte(os.ExpandEnv(string(content)))
}
