package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"deckhand/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func sampleDeck() *entities.Deck {
	return &entities.Deck{
		Name:       "Geography",
		SourceFile: "geography.apkg",
		Cards: []entities.Card{
			{
				AnkiNoteID: "1676543210001",
				AnkiCardID: "1676543210101",
				Front:      "Capital of France?",
				Back:       "Paris",
				NoteType:   "Basic",
				DeckName:   "Geography",
				EaseFactor: 2500,
			},
			{
				AnkiNoteID: "1676543210002",
				AnkiCardID: "1676543210102",
				Front:      "Capital of Spain?",
				Back:       "Madrid",
				NoteType:   "Basic",
				DeckName:   "Geography",
				EaseFactor: 2650,
			},
		},
		NoteTypes: []entities.NoteType{
			{AnkiID: "1676543210001", Name: "Basic"},
		},
	}
}

func TestDeckOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("SaveDeck creates new deck", func(t *testing.T) {
		deck := sampleDeck()

		err := db.SaveDeck(deck)
		assert.NoError(t, err)
		assert.NotZero(t, deck.ID)
		assert.NotZero(t, deck.Cards[0].ID)
		assert.Equal(t, deck.ID, deck.Cards[0].DeckID)
	})

	t.Run("GetDeckByID retrieves saved deck", func(t *testing.T) {
		deck, err := db.GetDeckByName("Geography")
		require.NoError(t, err)

		retrieved, err := db.GetDeckByID(deck.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Geography", retrieved.Name)
		assert.Len(t, retrieved.Cards, 2)
		assert.Len(t, retrieved.NoteTypes, 1)
		assert.Equal(t, "Capital of France?", retrieved.Cards[0].Front)
	})

	t.Run("SaveDeck replaces cards on re-import", func(t *testing.T) {
		deck := sampleDeck()
		deck.Cards = deck.Cards[:1]
		deck.Cards[0].Back = "Paris, obviously"

		err := db.SaveDeck(deck)
		require.NoError(t, err)

		retrieved, err := db.GetDeckByID(deck.ID)
		require.NoError(t, err)
		assert.Len(t, retrieved.Cards, 1)
		assert.Equal(t, "Paris, obviously", retrieved.Cards[0].Back)
	})

	t.Run("GetAllDecks returns all saved decks", func(t *testing.T) {
		other := sampleDeck()
		other.Name = "History"
		other.SourceFile = "history.apkg"
		require.NoError(t, db.SaveDeck(other))

		decks, err := db.GetAllDecks()
		assert.NoError(t, err)
		assert.Len(t, decks, 2)
	})

	t.Run("DeleteDeck removes deck and its cards", func(t *testing.T) {
		deck, err := db.GetDeckByName("History")
		require.NoError(t, err)

		err = db.DeleteDeck(deck.ID)
		assert.NoError(t, err)

		_, err = db.GetDeckByID(deck.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		cards, err := db.GetCardsForDeck(deck.ID, 0, 0)
		assert.NoError(t, err)
		assert.Empty(t, cards)
	})
}

func TestCardOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	deck := sampleDeck()
	require.NoError(t, db.SaveDeck(deck))

	t.Run("GetCardsForDeck respects limit and offset", func(t *testing.T) {
		cards, err := db.GetCardsForDeck(deck.ID, 1, 0)
		assert.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Capital of France?", cards[0].Front)

		cards, err = db.GetCardsForDeck(deck.ID, 1, 1)
		assert.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "Capital of Spain?", cards[0].Front)
	})

	t.Run("GetCardByID preloads tags", func(t *testing.T) {
		tag, err := db.GetOrCreateTag("capitals")
		require.NoError(t, err)

		cards, err := db.GetCardsForDeck(deck.ID, 1, 0)
		require.NoError(t, err)
		require.NoError(t, db.DB.Model(&cards[0]).Association("Tags").Append(tag))

		card, err := db.GetCardByID(cards[0].ID)
		assert.NoError(t, err)
		require.Len(t, card.Tags, 1)
		assert.Equal(t, "capitals", card.Tags[0].Name)
	})
}

func TestTagOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("GetOrCreateTag is idempotent", func(t *testing.T) {
		first, err := db.GetOrCreateTag("europe")
		require.NoError(t, err)

		second, err := db.GetOrCreateTag("europe")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		tags, err := db.GetAllTags()
		assert.NoError(t, err)
		assert.Len(t, tags, 1)
	})
}

func TestImportSessionOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("CreateImportSession starts pending", func(t *testing.T) {
		session, err := db.CreateImportSession("deck.apkg", "abcd1234")
		require.NoError(t, err)
		assert.NotZero(t, session.ID)
		assert.Equal(t, entities.ImportStatusPending, session.Status)
		assert.False(t, session.StartedAt.IsZero())
	})

	t.Run("UpdateImportSession persists progress", func(t *testing.T) {
		session, err := db.CreateImportSession("deck.apkg", "abcd1234")
		require.NoError(t, err)

		session.Status = entities.ImportStatusCompleted
		session.TotalCards = 10
		session.ImportedCards = 9
		session.SkippedCards = 1
		require.NoError(t, db.UpdateImportSession(session))

		retrieved, err := db.GetImportSession(session.ID)
		assert.NoError(t, err)
		assert.Equal(t, entities.ImportStatusCompleted, retrieved.Status)
		assert.Equal(t, 9, retrieved.ImportedCards)
	})

	t.Run("GetRecentImportSessions orders newest first", func(t *testing.T) {
		sessions, err := db.GetRecentImportSessions(1)
		assert.NoError(t, err)
		assert.Len(t, sessions, 1)
	})
}

func TestGetStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.SaveDeck(sampleDeck()))

	decks, cards, err := db.GetStats()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), decks)
	assert.Equal(t, int64(2), cards)
}
