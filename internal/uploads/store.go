package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const archiveExtension = ".apkg"

// Store keeps uploaded deck archives on disk, each under a random hex key.
// Archives are re-opened later for media lookups, so they stay around until
// pruned.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the archive to disk and returns its key. The write goes
// through a temp file in the same directory so a partially received upload
// never appears under a valid key.
func (s *Store) Save(r io.Reader) (string, error) {
	key, err := generateKey()
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "upload_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, s.Path(key)); err != nil {
		return "", err
	}
	return key, nil
}

// Path returns the on-disk location for a key. The file may not exist.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+archiveExtension)
}

// Exists reports whether an archive is stored under key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Delete removes the archive under key. Missing files are not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PruneOlderThan removes stored archives whose modification time is older
// than age. It returns the number of archives removed.
func (s *Store) PruneOlderThan(age time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+archiveExtension))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string {
	return s.dir
}

func generateKey() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
