package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deckhand/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Deck{},
		&entities.Card{},
		&entities.NoteType{},
		&entities.Tag{},
		&entities.ImportSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDeck upserts a deck by name and source file. When the deck already
// exists its cards and note types are replaced wholesale; card-level merge
// is pointless because a re-import always carries the full collection.
func (d *Database) SaveDeck(deck *entities.Deck) error {
	var existing entities.Deck
	result := d.DB.Where("name = ? AND source_file = ?", deck.Name, deck.SourceFile).First(&existing)

	if result.Error == nil {
		deck.ID = existing.ID
		if err := d.DB.Where("deck_id = ?", existing.ID).Delete(&entities.Card{}).Error; err != nil {
			return fmt.Errorf("failed to clear cards for deck %d: %w", existing.ID, err)
		}
		if err := d.DB.Where("deck_id = ?", existing.ID).Delete(&entities.NoteType{}).Error; err != nil {
			return fmt.Errorf("failed to clear note types for deck %d: %w", existing.ID, err)
		}
		return d.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(deck).Error
	}
	if result.Error == gorm.ErrRecordNotFound {
		return d.DB.Create(deck).Error
	}
	return result.Error
}

func (d *Database) GetDeckByID(id uint) (*entities.Deck, error) {
	var deck entities.Deck
	err := d.DB.Preload("Cards", func(db *gorm.DB) *gorm.DB {
		return db.Order("anki_note_id ASC, anki_card_id ASC")
	}).Preload("Cards.Tags").Preload("NoteTypes").First(&deck, id).Error
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (d *Database) GetDeckByName(name string) (*entities.Deck, error) {
	var deck entities.Deck
	err := d.DB.Preload("Cards").Preload("NoteTypes").Where("name = ?", name).First(&deck).Error
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (d *Database) GetAllDecks() ([]entities.Deck, error) {
	var decks []entities.Deck
	err := d.DB.Order("created_at DESC").Find(&decks).Error
	return decks, err
}

func (d *Database) DeleteDeck(id uint) error {
	if err := d.DB.Where("deck_id = ?", id).Delete(&entities.Card{}).Error; err != nil {
		return err
	}
	if err := d.DB.Where("deck_id = ?", id).Delete(&entities.NoteType{}).Error; err != nil {
		return err
	}
	return d.DB.Delete(&entities.Deck{}, id).Error
}

func (d *Database) GetCardByID(id uint) (*entities.Card, error) {
	var card entities.Card
	err := d.DB.Preload("Tags").First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (d *Database) GetCardsForDeck(deckID uint, limit, offset int) ([]entities.Card, error) {
	var cards []entities.Card
	query := d.DB.Preload("Tags").Where("deck_id = ?", deckID).
		Order("anki_note_id ASC, anki_card_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&cards).Error
	return cards, err
}

func (d *Database) GetOrCreateTag(name string) (*entities.Tag, error) {
	var tag entities.Tag
	err := d.DB.Where("name = ?", name).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		tag = entities.Tag{Name: name}
		if err := d.DB.Create(&tag).Error; err != nil {
			return nil, err
		}
		return &tag, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (d *Database) GetAllTags() ([]entities.Tag, error) {
	var tags []entities.Tag
	err := d.DB.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (d *Database) CreateImportSession(filename, uploadKey string) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		Filename:  filename,
		UploadKey: uploadKey,
		Status:    entities.ImportStatusPending,
		StartedAt: time.Now(),
	}
	if err := d.DB.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (d *Database) UpdateImportSession(session *entities.ImportSession) error {
	return d.DB.Save(session).Error
}

func (d *Database) GetImportSession(id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := d.DB.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *Database) GetRecentImportSessions(limit int) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	query := d.DB.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func (d *Database) GetStats() (totalDecks int64, totalCards int64, err error) {
	err = d.DB.Model(&entities.Deck{}).Count(&totalDecks).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.Card{}).Count(&totalCards).Error
	return
}
