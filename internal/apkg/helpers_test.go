package apkg

import (
	"archive/zip"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// basicModelsJSON declares a single "Basic" note type with a Front/Back
// card template, the shape Anki itself exports.
const basicModelsJSON = `{
	"1676543210001": {
		"name": "Basic",
		"flds": [{"name": "Front", "ord": 0}, {"name": "Back", "ord": 1}],
		"tmpls": [{"name": "Card 1", "ord": 0, "qfmt": "{{Front}}", "afmt": "{{FrontSide}}<hr>{{Back}}"}],
		"css": ".card { font-family: arial; }"
	}
}`

const basicModelID = 1676543210001

type testNote struct {
	id     int64
	model  int64
	tags   string
	fields string
}

type testCard struct {
	id   int64
	note int64
	deck int64
	ord  int

	// nil inserts NULL, mirroring legacy exports with absent scheduling.
	due, ivl, factor, reps, lapses any
}

const collectionSchema = `
	CREATE TABLE col (
		id INTEGER PRIMARY KEY,
		models TEXT,
		decks TEXT
	);
	CREATE TABLE notes (
		id INTEGER PRIMARY KEY,
		guid TEXT,
		mid INTEGER,
		tags TEXT,
		flds TEXT,
		sfld TEXT
	);
	CREATE TABLE cards (
		id INTEGER PRIMARY KEY,
		nid INTEGER,
		did INTEGER,
		ord INTEGER,
		due INTEGER,
		ivl INTEGER,
		factor INTEGER,
		reps INTEGER,
		lapses INTEGER
	);
`

// createEmptyColDB writes a collection database with the schema but no rows.
func createEmptyColDB(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to create collection database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// createCollectionDB writes a minimal Anki collection database at path.
func createCollectionDB(t *testing.T, path, modelsJSON, decksJSON string, notes []testNote, cards []testCard) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to create collection database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	if _, err := db.Exec("INSERT INTO col (id, models, decks) VALUES (1, ?, ?)", modelsJSON, decksJSON); err != nil {
		t.Fatalf("failed to insert col row: %v", err)
	}

	for _, n := range notes {
		_, err := db.Exec(
			"INSERT INTO notes (id, guid, mid, tags, flds, sfld) VALUES (?, ?, ?, ?, ?, '')",
			n.id, "", n.model, n.tags, n.fields,
		)
		if err != nil {
			t.Fatalf("failed to insert note %d: %v", n.id, err)
		}
	}

	for _, c := range cards {
		_, err := db.Exec(
			"INSERT INTO cards (id, nid, did, ord, due, ivl, factor, reps, lapses) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			c.id, c.note, c.deck, c.ord, c.due, c.ivl, c.factor, c.reps, c.lapses,
		)
		if err != nil {
			t.Fatalf("failed to insert card %d: %v", c.id, err)
		}
	}
}

// writeArchive zips the given entries into an .apkg file and returns its path.
func writeArchive(t *testing.T, entries map[string][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.apkg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add entry %s: %v", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("failed to write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finalize archive: %v", err)
	}
	return path
}

// buildTestArchive assembles a complete .apkg: a collection database under
// dbName plus any extra entries (media manifest, numbered media payloads).
func buildTestArchive(t *testing.T, dbName, modelsJSON, decksJSON string, notes []testNote, cards []testCard, extra map[string][]byte) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "collection.db")
	createCollectionDB(t, dbPath, modelsJSON, decksJSON, notes, cards)

	dbBytes, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("failed to read collection database: %v", err)
	}

	entries := map[string][]byte{dbName: dbBytes}
	for name, data := range extra {
		entries[name] = data
	}
	return writeArchive(t, entries)
}
