package apkg

import (
	"archive/zip"
	"database/sql"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Parser parses Anki .apkg exports. It carries no per-parse state: every
// Parse call builds its own catalogs, so a single Parser may be used from
// multiple goroutines.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts the collection database from the archive at path and
// turns it into a ParsedDeck.
//
// Structural problems return a *FormatError and no partial result.
// Rows that cannot be resolved against the note-type catalog are skipped;
// the returned deck simply holds fewer cards than the source had rows.
func (p *Parser) Parse(path string) (*ParsedDeck, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, newFormatError("file not found: "+path, err)
	}
	if !isZipFile(path) {
		return nil, newFormatError("not a valid .apkg file: "+path, nil)
	}

	arc, err := extractCollection(path)
	if err != nil {
		return nil, err
	}
	defer arc.Cleanup()

	db, err := sql.Open("sqlite3", arc.dbPath+"?mode=ro")
	if err != nil {
		return nil, newFormatError("failed to open collection database", err)
	}
	defer db.Close()

	cat, err := readCatalogs(db)
	if err != nil {
		return nil, err
	}

	cards, err := extractCards(db, cat)
	if err != nil {
		return nil, err
	}

	return &ParsedDeck{
		Name:       cat.deckDisplayName(),
		Cards:      cards,
		NoteTypes:  cat.orderedNoteTypes(),
		MediaFiles: p.ListMediaFiles(path),
	}, nil
}

// ListMediaFiles returns the archive's media manifest: numbered entry
// names mapped to original filenames. Missing or malformed manifests yield
// an empty map.
func (p *Parser) ListMediaFiles(path string) map[string]string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return map[string]string{}
	}
	defer zr.Close()
	return readMediaManifest(&zr.Reader)
}
