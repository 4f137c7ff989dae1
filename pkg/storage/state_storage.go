package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// fileLocks holds one mutex per state file path.
var fileLocks sync.Map

func lockFor(path string) *sync.Mutex {
	mu, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// jsonStateStorage implements StateStorage using a single JSON file
type jsonStateStorage struct {
	filePath string
	logger   hclog.Logger
}

// NewStateStorage creates a state store backed by filePath.
func NewStateStorage(filePath string, logger hclog.Logger) StateStorage {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &jsonStateStorage{
		filePath: filepath.Clean(filePath),
		logger:   logger,
	}
}

// ReadState loads the state file
func (s *jsonStateStorage) ReadState() *State {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read state file", "path", s.filePath, "error", err)
		}
		return &State{}
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("ignoring corrupt state file", "path", s.filePath, "error", err)
		return &State{}
	}
	return &state
}

// WriteState replaces the state file atomically
func (s *jsonStateStorage) WriteState(state *State) error {
	if err := s.write(state); err != nil {
		s.logger.Warn("failed to write state file", "path", s.filePath, "error", err)
		return err
	}
	return nil
}

// Update applies fn to the current state and writes the result
func (s *jsonStateStorage) Update(fn func(state *State)) error {
	mu := lockFor(s.filePath)
	mu.Lock()
	defer mu.Unlock()

	state := s.ReadState()
	fn(state)
	return s.WriteState(state)
}

func (s *jsonStateStorage) write(state *State) error {
	if state == nil {
		state = &State{}
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tmpName, s.filePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
