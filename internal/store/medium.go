package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Medium is the persistence boundary. Load reports ok=false when no state
// has been saved yet; Save must persist the whole document atomically.
type Medium interface {
	Load() (State, bool, error)
	Save(State) error
}

// FileMedium persists the store document to a single local file, JSON by
// default, YAML when the path ends in .yml or .yaml.
type FileMedium struct {
	path string
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

func (m *FileMedium) useYAML() bool {
	ext := strings.ToLower(filepath.Ext(m.path))
	return ext == ".yml" || ext == ".yaml"
}

// Load reads the snapshot file back, reporting ok=false when it does not
// exist yet.
func (m *FileMedium) Load() (State, bool, error) {
	contents, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("os.ReadFile(%s) > %w", m.path, err)
	}

	var state State
	if m.useYAML() {
		if err := yaml.Unmarshal(contents, &state); err != nil {
			return State{}, false, fmt.Errorf("yaml.Unmarshal > %w", err)
		}
	} else {
		if err := json.Unmarshal(contents, &state); err != nil {
			return State{}, false, fmt.Errorf("json.Unmarshal > %w", err)
		}
	}
	return state, true, nil
}

// Save writes the whole document through a temporary file and a rename, so a
// crashed write never leaves a truncated snapshot behind.
func (m *FileMedium) Save(state State) error {
	var contents []byte
	var err error
	if m.useYAML() {
		contents, err = yaml.Marshal(state)
		if err != nil {
			return fmt.Errorf("yaml.Marshal > %w", err)
		}
	} else {
		contents, err = json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("json.MarshalIndent > %w", err)
		}
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp > %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("tmp.Write > %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("tmp.Close > %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Rename > %w", err)
	}
	return nil
}
