// Package apkg parses Anki .apkg exports into structured deck, card and
// media records.
//
// An .apkg file is a ZIP archive bundling a SQLite snapshot of the Anki
// collection (collection.anki21 for Anki 2.1, collection.anki2 for 2.0),
// a JSON media manifest and the numbered media payloads themselves.
//
// # Parsing
//
//	parser := apkg.NewParser()
//	deck, err := parser.Parse("my_deck.apkg")
//	if err != nil {
//		var formatErr *apkg.FormatError
//		if errors.As(err, &formatErr) {
//			// structurally broken archive
//		}
//	}
//	for _, card := range deck.Cards {
//		fmt.Printf("%s -> %s\n", card.Front, card.Back)
//	}
//
// Structural problems (missing file, not a ZIP, no collection database,
// malformed models/decks JSON) abort the whole parse with a *FormatError.
// Per-row problems (a card referencing an unknown note type, missing field
// values, an out-of-range template ordinal) are recovered locally: the row
// is skipped or defaulted and parsing continues.
//
// Parse keeps no state on the Parser; concurrent parses of independent
// files are safe.
package apkg
