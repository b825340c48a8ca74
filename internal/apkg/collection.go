package apkg

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

const (
	// Sentinel name Anki gives the deck every collection starts with.
	defaultDeckName = "Default"
	// Display name used when a collection only contains default decks.
	fallbackDeckName = "Imported Deck"
)

// deckEntry is one deck from the collection metadata, in the order the
// producer wrote it.
type deckEntry struct {
	ID   string
	Name string
}

// catalogs holds the note-type and deck definitions decoded from the
// collection metadata row. A fresh catalogs value is built for every parse;
// it is never shared between calls.
type catalogs struct {
	noteTypes map[string]NoteType
	modelIDs  []string // insertion order of noteTypes
	decks     []deckEntry
	deckNames map[string]string
}

// readCatalogs reads the single collection metadata row and decodes its
// models and decks JSON columns. Any failure here is fatal: without
// catalogs no card can be resolved.
func readCatalogs(db *sql.DB) (*catalogs, error) {
	var modelsJSON, decksJSON string
	err := db.QueryRow("SELECT models, decks FROM col").Scan(&modelsJSON, &decksJSON)
	if err == sql.ErrNoRows {
		return nil, newFormatError("empty collection", nil)
	}
	if err != nil {
		return nil, newFormatError("failed to read collection metadata", err)
	}

	cat := &catalogs{
		noteTypes: make(map[string]NoteType),
		deckNames: make(map[string]string),
	}

	if err := cat.decodeModels([]byte(modelsJSON)); err != nil {
		return nil, newFormatError("malformed models JSON", err)
	}
	if err := cat.decodeDecks([]byte(decksJSON)); err != nil {
		return nil, newFormatError("malformed decks JSON", err)
	}

	return cat, nil
}

// rawModel mirrors the JSON shape Anki stores in col.models. Unknown keys
// are ignored.
type rawModel struct {
	Name string `json:"name"`
	Flds []struct {
		Name string `json:"name"`
	} `json:"flds"`
	Tmpls []Template `json:"tmpls"`
	CSS   string     `json:"css"`
}

// decodeModels walks the models object token by token so that the catalog
// preserves the producer's key order.
func (c *catalogs) decodeModels(data []byte) error {
	return decodeOrderedObject(data, func(id string, dec *json.Decoder) error {
		var raw rawModel
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		name := raw.Name
		if name == "" {
			name = "Unknown"
		}

		fields := make([]string, 0, len(raw.Flds))
		for _, f := range raw.Flds {
			fields = append(fields, f.Name)
		}

		c.noteTypes[id] = NoteType{
			ID:        id,
			Name:      name,
			Fields:    fields,
			Templates: raw.Tmpls,
			CSS:       raw.CSS,
		}
		c.modelIDs = append(c.modelIDs, id)
		return nil
	})
}

func (c *catalogs) decodeDecks(data []byte) error {
	return decodeOrderedObject(data, func(id string, dec *json.Decoder) error {
		var raw struct {
			Name string `json:"name"`
		}
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		name := raw.Name
		if name == "" {
			name = "Unknown"
		}

		c.decks = append(c.decks, deckEntry{ID: id, Name: name})
		c.deckNames[id] = name
		return nil
	})
}

// deckDisplayName picks the top-level deck name: the first deck, in
// insertion order, whose name is not the "Default" sentinel. A collection
// holding only default decks gets the fallback name.
func (c *catalogs) deckDisplayName() string {
	for _, d := range c.decks {
		if d.Name != defaultDeckName {
			return d.Name
		}
	}
	return fallbackDeckName
}

// orderedNoteTypes returns the note types in the order they appeared in
// the models JSON.
func (c *catalogs) orderedNoteTypes() []NoteType {
	out := make([]NoteType, 0, len(c.modelIDs))
	for _, id := range c.modelIDs {
		out = append(out, c.noteTypes[id])
	}
	return out
}

// decodeOrderedObject decodes a JSON object, calling fn for each key/value
// pair in document order. encoding/json map decoding would lose the order,
// which the deck-name rule depends on.
func decodeOrderedObject(data []byte, fn func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
