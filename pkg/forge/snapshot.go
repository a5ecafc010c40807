//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=snapshot.go -destination=mock_snapshot.gen.go -package=forge

package forge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Snapshot is the serialized form of the registry cache, keyed by canonical
// module name.
type Snapshot map[string]SnapshotEntry

// SnapshotEntry is one cached module document. TimeFetched is unix seconds.
type SnapshotEntry struct {
	Version     string `json:"version"`
	Deprecated  bool   `json:"is_deprecated"`
	TimeFetched int64  `json:"time_fetched"`
}

// SnapshotStore loads and saves registry snapshots between runs.
type SnapshotStore interface {
	Load() (Snapshot, error)
	Save(snap Snapshot) error
}

type fileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore returns a SnapshotStore backed by a JSON file. Loading
// a path that does not exist yet returns an empty snapshot, not an error.
func NewFileSnapshotStore(path string) SnapshotStore {
	return &fileSnapshotStore{
		path: path,
	}
}

var _ SnapshotStore = (*fileSnapshotStore)(nil)

func (s *fileSnapshotStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", s.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %q: %w", s.path, err)
	}
	return snap, nil
}

func (s *fileSnapshotStore) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serializing snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %q: %w", s.path, err)
	}
	return nil
}
