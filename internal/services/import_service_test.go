package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckhand/internal/apkg"
	"deckhand/internal/entities"
)

type fakeStore struct {
	savedDeck      *entities.Deck
	tags           map[string]*entities.Tag
	sessionUpdates []entities.ImportStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{tags: make(map[string]*entities.Tag)}
}

func (f *fakeStore) SaveDeck(deck *entities.Deck) error {
	deck.ID = 42
	f.savedDeck = deck
	return nil
}

func (f *fakeStore) GetOrCreateTag(name string) (*entities.Tag, error) {
	if tag, ok := f.tags[name]; ok {
		return tag, nil
	}
	tag := &entities.Tag{ID: uint(len(f.tags) + 1), Name: name}
	f.tags[name] = tag
	return tag, nil
}

func (f *fakeStore) UpdateImportSession(session *entities.ImportSession) error {
	f.sessionUpdates = append(f.sessionUpdates, session.Status)
	return nil
}

func sampleParsedDeck() *apkg.ParsedDeck {
	return &apkg.ParsedDeck{
		Name: "Geography",
		Cards: []apkg.ParsedCard{
			{
				NoteID:     "1",
				CardID:     "11",
				Front:      "Capital of France?",
				Back:       "Paris",
				NoteType:   "Basic",
				DeckName:   "Geography",
				Tags:       []string{"capitals", "europe"},
				Fields:     map[string]string{"Front": "Capital of France?", "Back": "Paris"},
				EaseFactor: 2500,
			},
		},
		NoteTypes: []apkg.NoteType{
			{ID: "100", Name: "Basic", Fields: []string{"Front", "Back"}},
		},
	}
}

func TestImportParsedDeck(t *testing.T) {
	store := newFakeStore()
	service := NewImportService(store)

	result, err := service.ImportParsedDeck(sampleParsedDeck(), "geography.apkg", "key123", []string{"imported", "europe"})
	require.NoError(t, err)

	assert.Equal(t, uint(42), result.DeckID)
	assert.Equal(t, "Geography", result.DeckName)
	assert.Equal(t, 1, result.TotalCards)
	assert.Equal(t, 1, result.ImportedCards)
	assert.Zero(t, result.SkippedCards)
	assert.Empty(t, result.Errors)

	require.NotNil(t, store.savedDeck)
	assert.Equal(t, "geography.apkg", store.savedDeck.SourceFile)
	assert.Equal(t, "key123", store.savedDeck.UploadKey)
	require.Len(t, store.savedDeck.Cards, 1)

	card := store.savedDeck.Cards[0]
	assert.Equal(t, "11", card.AnkiCardID)
	assert.JSONEq(t, `{"Front": "Capital of France?", "Back": "Paris"}`, card.FieldsJSON)

	// Card tags first, extra tags appended, "europe" not duplicated.
	tagNames := make([]string, 0, len(card.Tags))
	for _, tag := range card.Tags {
		tagNames = append(tagNames, tag.Name)
	}
	assert.Equal(t, []string{"capitals", "europe", "imported"}, tagNames)

	require.Len(t, store.savedDeck.NoteTypes, 1)
	assert.Equal(t, "100", store.savedDeck.NoteTypes[0].AnkiID)
	assert.JSONEq(t, `["Front", "Back"]`, store.savedDeck.NoteTypes[0].FieldsJSON)
}

func TestImportArchive_ParseFailureMarksSessionFailed(t *testing.T) {
	store := newFakeStore()
	service := NewImportService(store)

	session := &entities.ImportSession{ID: 7, Filename: "gone.apkg"}
	_, err := service.ImportArchive(filepath.Join(t.TempDir(), "gone.apkg"), "gone.apkg", "key", nil, session)
	require.Error(t, err)

	assert.Equal(t, entities.ImportStatusFailed, session.Status)
	assert.NotNil(t, session.CompletedAt)
	assert.Contains(t, session.Errors, "file not found")
	assert.Equal(t, []entities.ImportStatus{
		entities.ImportStatusRunning,
		entities.ImportStatusFailed,
	}, store.sessionUpdates)
}

func TestMergeTags(t *testing.T) {
	merged := mergeTags([]string{"a", "b", "a"}, []string{"b", "c", ""})
	assert.Equal(t, []string{"a", "b", "c"}, merged)
}
