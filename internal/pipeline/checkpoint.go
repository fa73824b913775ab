package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CheckpointStore persists the last fully processed day.
type CheckpointStore interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, day string) error
}

// Checkpoint is the on-disk checkpoint format.
type Checkpoint struct {
	LastProcessedDay string `json:"last_processed_day"`
	UpdatedAt        string `json:"updated_at"`
}

// FileCheckpointStore persists checkpoints to a local JSON file.
type FileCheckpointStore struct {
	path    string
	enabled bool
}

func NewFileCheckpointStore(path string, enabled bool) *FileCheckpointStore {
	return &FileCheckpointStore{path: path, enabled: enabled}
}

func (c *FileCheckpointStore) Load(_ context.Context) (string, bool, error) {
	if !c.enabled {
		return "", false, nil
	}

	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return "", false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return "", false, fmt.Errorf("parse checkpoint: %w", err)
	}

	return cp.LastProcessedDay, cp.LastProcessedDay != "", nil
}

func (c *FileCheckpointStore) Save(_ context.Context, day string) error {
	if !c.enabled {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	cp := Checkpoint{
		LastProcessedDay: day,
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}

// StateStore is the name-keyed state table of a database sink.
type StateStore interface {
	LoadState(ctx context.Context, name string) (string, bool, error)
	SaveState(ctx context.Context, name string, day string) error
}

// DBCheckpointStore stores checkpoints in the sink's indexer_state table.
type DBCheckpointStore struct {
	Store StateStore
	Name  string
}

func (s *DBCheckpointStore) Load(ctx context.Context) (string, bool, error) {
	if s == nil || s.Store == nil {
		return "", false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBCheckpointStore) Save(ctx context.Context, day string) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, day)
}
