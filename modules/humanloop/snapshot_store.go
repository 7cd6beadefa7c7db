package humanloop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmartinez/canje/modules/formfill"
)

// SnapshotStore persists a formfill.Snapshot and its screenshot to the
// local filesystem, alongside the Document Pipeline's artifact layout
// (spec §6 "filesystem layout").
type SnapshotStore struct {
	root string
}

func NewSnapshotStore(root string) *SnapshotStore {
	return &SnapshotStore{root: root}
}

func (s *SnapshotStore) dir(applicationID string) string {
	return filepath.Join(s.root, applicationID)
}

// SnapshotPath is where Save writes the snapshot JSON for applicationID.
func (s *SnapshotStore) SnapshotPath(applicationID string) string {
	return filepath.Join(s.dir(applicationID), "snapshot.json")
}

// ScreenshotPath is where a full-page screenshot for applicationID lives.
func (s *SnapshotStore) ScreenshotPath(applicationID, name string) string {
	return filepath.Join(s.dir(applicationID), name)
}

func (s *SnapshotStore) Save(applicationID string, snap formfill.Snapshot) (string, error) {
	if err := os.MkdirAll(s.dir(applicationID), 0o755); err != nil {
		return "", fmt.Errorf("humanloop: create snapshot dir: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("humanloop: marshal snapshot: %w", err)
	}
	path := s.SnapshotPath(applicationID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("humanloop: write snapshot: %w", err)
	}
	return path, nil
}

func (s *SnapshotStore) Load(path string) (formfill.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formfill.Snapshot{}, fmt.Errorf("humanloop: read snapshot: %w", err)
	}
	var snap formfill.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return formfill.Snapshot{}, fmt.Errorf("humanloop: unmarshal snapshot: %w", err)
	}
	return snap, nil
}
