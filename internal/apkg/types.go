package apkg

// Template is one card template of a note type. A note generates one card
// per template; the card's ordinal selects the template used to render it.
type Template struct {
	Name           string `json:"name"`
	QuestionFormat string `json:"qfmt"`
	AnswerFormat   string `json:"afmt"`
}

// NoteType describes the schema of a note: its ordered field names, the
// card templates it generates and the CSS styling shared by those cards.
// Anki calls this a "model".
type NoteType struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Fields    []string   `json:"fields"`
	Templates []Template `json:"templates"`
	CSS       string     `json:"css"`
}

// ParsedCard is a single renderable question/answer pair extracted from
// the collection, together with the raw field values it was rendered from
// and a snapshot of its scheduling state.
type ParsedCard struct {
	NoteID   string            `json:"note_id"`
	CardID   string            `json:"card_id"`
	Front    string            `json:"front"`
	Back     string            `json:"back"`
	Tags     []string          `json:"tags"`
	NoteType string            `json:"note_type"`
	DeckName string            `json:"deck_name"`
	Fields   map[string]string `json:"fields"`

	Due        int `json:"due"`
	Interval   int `json:"interval"`
	EaseFactor int `json:"ease_factor"`
	Reviews    int `json:"reviews"`
	Lapses     int `json:"lapses"`
}

// ParsedDeck is the result of parsing one .apkg file.
//
// MediaFiles maps the archive's numbered entry names to original media
// filenames exactly as the producer wrote them; the numbering is opaque
// and preserved as-is.
type ParsedDeck struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Cards       []ParsedCard      `json:"cards"`
	NoteTypes   []NoteType        `json:"note_types"`
	MediaFiles  map[string]string `json:"media_files"`
}
