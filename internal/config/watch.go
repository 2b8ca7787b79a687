package config

import (
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher reports edits to the config file. Without a config file it never
// fires.
type Watcher struct {
	v *viper.Viper

	mu        sync.Mutex
	listeners []func(Config, error)
	once      sync.Once
}

// OnChange registers fn for every reload. fn receives the validation error
// when the edited file no longer forms a valid configuration.
func (w *Watcher) OnChange(fn func(Config, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Start begins watching. Calling it more than once has no further effect.
func (w *Watcher) Start() {
	if w == nil || w.v == nil || w.v.ConfigFileUsed() == "" {
		return
	}
	w.once.Do(func() {
		w.v.OnConfigChange(func(fsnotify.Event) {
			cfg, err := fromViper(w.v)

			w.mu.Lock()
			listeners := slices.Clone(w.listeners)
			w.mu.Unlock()

			for _, fn := range listeners {
				fn(cfg, err)
			}
		})
		w.v.WatchConfig()
	})
}

// File is the config file in use, or empty.
func (w *Watcher) File() string {
	if w == nil || w.v == nil {
		return ""
	}
	return w.v.ConfigFileUsed()
}
