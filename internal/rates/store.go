package rates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const dateLayout = "2006-01-02"

// Snapshot is one day's exchange rates for the base currency.
// Invariant: Rates[Base] == 1 on every persisted snapshot.
type Snapshot struct {
	AsOf  string             `json:"as_of"`
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s Snapshot) IsZero() bool {
	return s.AsOf == "" && len(s.Rates) == 0
}

// Fresh reports whether the snapshot was taken on the given calendar day.
func (s Snapshot) Fresh(now time.Time) bool {
	return s.AsOf == now.Format(dateLayout)
}

// FileStore persists snapshots as a single JSON file. The file is read
// then written without locking; concurrent writers race with
// last-write-wins semantics.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted snapshot, or a zero snapshot when the file
// does not exist yet.
func (f *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read rates cache: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse rates cache: %w", err)
	}
	return snap, nil
}

func (f *FileStore) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create rates cache directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rates cache: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write rates cache: %w", err)
	}
	return nil
}
