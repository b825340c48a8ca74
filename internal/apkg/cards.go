package apkg

import (
	"database/sql"
	"log"
	"strconv"
	"strings"
)

// fieldSeparator is the reserved control byte Anki uses to join a note's
// field values into the single flds column.
const fieldSeparator = "\x1f"

// Ease factor Anki assigns to new cards, in permille.
const defaultEaseFactor = 2500

// noteCardRow is one row of the notes/cards join.
type noteCardRow struct {
	noteID  int64
	modelID int64
	tags    string
	fields  string

	cardID  int64
	deckID  int64
	ordinal int

	due      sql.NullInt64
	interval sql.NullInt64
	factor   sql.NullInt64
	reviews  sql.NullInt64
	lapses   sql.NullInt64
}

// extractCards joins notes with their cards and renders one ParsedCard per
// row. Query failures are fatal; individual rows that cannot be resolved
// (unknown note type) are logged and skipped so a partially malformed
// collection still yields a best-effort result.
func extractCards(db *sql.DB, cat *catalogs) ([]ParsedCard, error) {
	query := `
		SELECT
			n.id, n.mid, n.tags, n.flds,
			c.id, c.did, c.ord,
			c.due, c.ivl, c.factor, c.reps, c.lapses
		FROM notes n
		JOIN cards c ON c.nid = n.id
		ORDER BY n.id, c.ord
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, newFormatError("failed to query notes and cards", err)
	}
	defer rows.Close()

	var cards []ParsedCard
	for rows.Next() {
		var row noteCardRow
		err := rows.Scan(
			&row.noteID, &row.modelID, &row.tags, &row.fields,
			&row.cardID, &row.deckID, &row.ordinal,
			&row.due, &row.interval, &row.factor, &row.reviews, &row.lapses,
		)
		if err != nil {
			return nil, newFormatError("failed to scan card row", err)
		}

		card, ok := buildCard(row, cat)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, newFormatError("failed to iterate card rows", err)
	}

	return cards, nil
}

// buildCard assembles a ParsedCard from one joined row. Returns ok=false
// when the row's note type is not in the catalog; that card is dropped.
func buildCard(row noteCardRow, cat *catalogs) (ParsedCard, bool) {
	modelID := strconv.FormatInt(row.modelID, 10)
	noteType, ok := cat.noteTypes[modelID]
	if !ok {
		log.Printf("apkg: skipping card %d: unknown note type id %s", row.cardID, modelID)
		return ParsedCard{}, false
	}

	fields := splitFields(row.fields, noteType.Fields)
	front, back := renderCard(noteType, fields, row.ordinal)

	deckName, ok := cat.deckNames[strconv.FormatInt(row.deckID, 10)]
	if !ok {
		deckName = defaultDeckName
	}

	return ParsedCard{
		NoteID:     strconv.FormatInt(row.noteID, 10),
		CardID:     strconv.FormatInt(row.cardID, 10),
		Front:      front,
		Back:       back,
		Tags:       parseTags(row.tags),
		NoteType:   noteType.Name,
		DeckName:   deckName,
		Fields:     fields,
		Due:        nullableInt(row.due, 0),
		Interval:   nullableInt(row.interval, 0),
		EaseFactor: nullableInt(row.factor, defaultEaseFactor),
		Reviews:    nullableInt(row.reviews, 0),
		Lapses:     nullableInt(row.lapses, 0),
	}, true
}

// splitFields zips the raw field string against the declared field names.
// Notes with fewer values than declared fields get empty strings for the
// missing trailing fields; surplus values beyond the declared count are
// dropped.
func splitFields(raw string, names []string) map[string]string {
	values := strings.Split(raw, fieldSeparator)

	fields := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			fields[name] = values[i]
		} else {
			fields[name] = ""
		}
	}
	return fields
}

// parseTags splits the raw whitespace-separated tag string, discarding
// empty tokens.
func parseTags(raw string) []string {
	return strings.Fields(raw)
}

// nullableInt unwraps a nullable column, treating both NULL and zero as
// absent. Anki writes 0 where a card has no recorded value, so a zero ease
// factor still maps to the 2500 default.
func nullableInt(v sql.NullInt64, fallback int) int {
	if !v.Valid || v.Int64 == 0 {
		return fallback
	}
	return int(v.Int64)
}
