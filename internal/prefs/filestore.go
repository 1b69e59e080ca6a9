package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

const (
	settingsFileMode = 0644
	settingsDirMode  = 0755
)

// FileSettings is a local settings store backed by a single JSON file
// of string keys and values. Reads are served from memory; every Set
// rewrites the file synchronously.
type FileSettings struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFileSettings loads (or initializes) the settings file at path.
// A missing file is an empty store; a malformed one is treated the same
// way rather than failing startup.
func OpenFileSettings(path string) (*FileSettings, error) {
	if path == "" {
		return nil, errors.New("prefs: settings path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), settingsDirMode); err != nil {
		return nil, fmt.Errorf("prefs: mkdir: %w", err)
	}

	fs := &FileSettings{
		path:   path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("prefs: read settings: %w", err)
	}
	if len(raw) > 0 {
		// Malformed settings degrade to empty, defaults apply.
		_ = json.Unmarshal(raw, &fs.values)
		if fs.values == nil {
			fs.values = make(map[string]string)
		}
	}

	return fs, nil
}

// Get returns the stored value for key, if any.
func (f *FileSettings) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// Set stores key=value and rewrites the settings file. The in-memory
// value is updated even if the file write fails, so the running session
// reflects the attempted change either way.
func (f *FileSettings) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value

	blob, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("prefs: marshal settings: %w", err)
	}
	if err := os.WriteFile(f.path, blob, settingsFileMode); err != nil {
		return fmt.Errorf("prefs: write settings: %w", err)
	}
	return nil
}
