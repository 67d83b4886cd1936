package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// ImageFile is the name of the state image under the data directory.
const ImageFile = "last_state.json"

// Store persists the phase record as a single JSON file in the data
// directory, replaced atomically on every transition. This is the
// flight store: it must survive the power rail browning out mid-write.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the full path of the state image.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ImageFile)
}

// Load reads the persisted phase record. A missing file is
// domain.ErrNoImage; a file that exists but does not parse as a record
// with a known phase is domain.ErrCorruptImage. The caller must treat
// the two differently.
func (s *Store) Load(ctx context.Context) (*domain.PhaseRecord, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoImage
		}
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrCorruptImage, s.Path(), err)
	}
	if len(data) == 0 {
		// An empty file means the previous boot died before its first
		// commit completed. Nothing trustworthy to resume.
		return nil, fmt.Errorf("%w: empty image", domain.ErrCorruptImage)
	}

	var record domain.PhaseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptImage, err)
	}
	if _, err := domain.ParsePhase(string(record.Phase)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptImage, err)
	}
	return &record, nil
}

// Save atomically replaces the state image: write to a temp file in the
// same directory, fsync it, rename it over the image, then fsync the
// directory so the rename itself is durable. A crash at any point
// leaves either the old image or the new one, never a torn file.
func (s *Store) Save(ctx context.Context, record *domain.PhaseRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling phase record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "last_state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp image: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("replacing image: %w", err)
	}

	// The rename is only durable once the directory entry is on disk.
	if dir, err := os.Open(s.dir); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return nil
}

// Delete removes the state image. Missing is not an error.
func (s *Store) Delete(ctx context.Context) error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
