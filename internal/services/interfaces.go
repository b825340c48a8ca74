package services

import "deckhand/internal/entities"

// DeckStore handles persisting decks and their import bookkeeping.
type DeckStore interface {
	SaveDeck(deck *entities.Deck) error
	GetOrCreateTag(name string) (*entities.Tag, error)
	UpdateImportSession(session *entities.ImportSession) error
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	DeckID        uint
	DeckName      string
	TotalCards    int
	ImportedCards int
	SkippedCards  int
	NoteTypes     int
	Errors        []string
}
