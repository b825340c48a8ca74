package apkg

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
)

// readMediaManifest decodes the media manifest entry: a JSON object
// mapping the archive's numbered entry names to original media filenames.
// A missing or malformed manifest yields an empty map, never an error;
// media is an optional side channel, not part of the structural contract.
func readMediaManifest(zr *zip.Reader) map[string]string {
	entry := findEntry(zr, mediaManifestEntry)
	if entry == nil {
		return map[string]string{}
	}

	src, err := entry.Open()
	if err != nil {
		return map[string]string{}
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return map[string]string{}
	}

	manifest := map[string]string{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return map[string]string{}
	}
	return manifest
}

// GetMediaFile extracts a single media payload from the archive by its
// original filename, without running a full parse.
//
// A nil byte slice with a nil error means "not found": the manifest is
// missing, no manifest entry matches the name, the numbered entry is
// absent, or the archive is not a readable ZIP. Only failing to stat the
// path itself returns an error.
func (p *Parser) GetMediaFile(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, statErr
		}
		return nil, nil
	}
	defer zr.Close()

	manifest := readMediaManifest(&zr.Reader)

	numbered := ""
	for num, original := range manifest {
		if original == name {
			numbered = num
			break
		}
	}
	if numbered == "" {
		return nil, nil
	}

	entry := findEntry(&zr.Reader, numbered)
	if entry == nil {
		return nil, nil
	}

	src, err := entry.Open()
	if err != nil {
		return nil, nil
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil
	}
	return data, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
