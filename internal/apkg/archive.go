package apkg

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// Anki 2.1 database entry, preferred when both are present.
	collectionFile21 = "collection.anki21"
	// Anki 2.0 database entry, legacy fallback.
	collectionFile20 = "collection.anki2"

	mediaManifestEntry = "media"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// extractedArchive holds the collection database extracted into a scoped
// temporary directory. Cleanup must be called (typically deferred) on every
// exit path; it removes the whole directory.
type extractedArchive struct {
	dir    string
	dbPath string
}

func (a *extractedArchive) Cleanup() {
	if a.dir != "" {
		os.RemoveAll(a.dir)
	}
}

// isZipFile reports whether the file at path starts with the ZIP local
// file header magic.
func isZipFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return bytes.Equal(header, zipMagic)
}

// extractCollection opens the archive and copies the collection database
// into a fresh temporary directory. The caller owns the returned archive
// and must defer its Cleanup.
func extractCollection(path string) (*extractedArchive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, newFormatError(fmt.Sprintf("failed to open archive %s", path), err)
	}
	defer zr.Close()

	entry := findCollectionEntry(&zr.Reader)
	if entry == nil {
		return nil, newFormatError("no collection database found in archive", nil)
	}

	tmpDir, err := os.MkdirTemp("", "apkg-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	dbPath := filepath.Join(tmpDir, entry.Name)
	if err := extractEntry(entry, dbPath); err != nil {
		os.RemoveAll(tmpDir)
		return nil, newFormatError("failed to extract collection database", err)
	}

	return &extractedArchive{dir: tmpDir, dbPath: dbPath}, nil
}

// findCollectionEntry locates the collection database, preferring the
// Anki 2.1 entry over the legacy 2.0 one.
func findCollectionEntry(zr *zip.Reader) *zip.File {
	var legacy *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case collectionFile21:
			return f
		case collectionFile20:
			legacy = f
		}
	}
	return legacy
}

func extractEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
