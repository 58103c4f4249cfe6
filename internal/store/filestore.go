package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mohammad-safakhou/marketscope/models"
)

// resultFile is the single document holding the most recent envelope.
const resultFile = "last_result.json"

// FileStore persists the latest result envelope as one JSON document.
// Every save replaces the file wholesale; there is no history here, the
// Postgres store keeps that.
type FileStore struct {
	Dir string
}

// NewFileStore ensures the data directory exists.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path() string {
	return filepath.Join(f.Dir, resultFile)
}

// Save writes the envelope indented so the document stays readable when
// inspected by hand.
func (f *FileStore) Save(env *models.ResultEnvelope) error {
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(), b, 0o644)
}

// Load reads the saved envelope. A missing file is reported as
// models.ErrNoSavedResult so callers can distinguish "never ran" from a
// broken file.
func (f *FileStore) Load() (*models.ResultEnvelope, error) {
	b, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrNoSavedResult
		}
		return nil, err
	}
	var env models.ResultEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	env = env.Normalize()
	return &env, nil
}
