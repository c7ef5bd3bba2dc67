// Package state persists the user's wake preference between sessions.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/power"
	"github.com/sirupsen/logrus"
)

// State is the persisted snapshot. The zero value is the default:
// sleep allowed, screen allowed to turn off.
type State struct {
	SleepDisabled bool             `json:"sleep_disabled"`
	ScreenMode    power.ScreenMode `json:"screen_mode"`
}

// Store reads and writes State as JSON at a fixed path.
type Store struct {
	path string
	log  *logrus.Entry
}

// NewStore returns a Store for path. Parent directories are created on write.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logrus.WithField("component", "state"),
	}
}

// DefaultPath is <user config dir>/tea/state.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tea", "state.json"), nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Read loads the persisted state. It never fails: a missing file is the
// normal first-run case and a corrupt file is logged; both yield the default.
func (s *Store) Read() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("failed to read state file, using defaults")
		}
		return State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("state file corrupted, using defaults")
		return State{}
	}
	return st
}

// Write persists st, replacing the file atomically.
func (s *Store) Write(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return apperr.New(apperr.StateSerialization,
			"Failed to serialize application state", err,
			"This is a bug. Please report it with your state configuration.")
	}

	if err := s.writeFile(data); err != nil {
		return apperr.New(apperr.StateIO,
			"Failed to write state to "+s.path, err,
			"Ensure you have write permissions and sufficient disk space.")
	}
	return nil
}

func (s *Store) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
