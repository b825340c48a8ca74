package entities

import (
	"time"

	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type Deck struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"index;size:512" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	SourceFile  string         `gorm:"index;size:1024" json:"source_file,omitempty"`
	UploadKey   string         `gorm:"size:64" json:"-"` // key into the upload store, for media lookups
	Cards       []Card         `gorm:"foreignKey:DeckID" json:"cards,omitempty"`
	NoteTypes   []NoteType     `gorm:"foreignKey:DeckID" json:"note_types,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Card struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	DeckID uint `gorm:"index" json:"deck_id"`

	// Anki identifiers, kept as strings to survive 64-bit millisecond ids.
	AnkiNoteID string `gorm:"index;size:32" json:"anki_note_id"`
	AnkiCardID string `gorm:"index;size:32" json:"anki_card_id"`

	Front      string `gorm:"type:text" json:"front"`
	Back       string `gorm:"type:text" json:"back"`
	NoteType   string `gorm:"size:256" json:"note_type"`
	DeckName   string `gorm:"size:512" json:"deck_name"`
	FieldsJSON string `gorm:"type:text" json:"fields_json,omitempty"`

	// Scheduling snapshot from the source collection.
	Due        int `json:"due"`
	Interval   int `json:"interval"`
	EaseFactor int `gorm:"default:2500" json:"ease_factor"`
	Reviews    int `json:"reviews"`
	Lapses     int `json:"lapses"`

	Deck Deck  `gorm:"foreignKey:DeckID" json:"-"`
	Tags []Tag `gorm:"many2many:card_tags;" json:"tags,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type NoteType struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	DeckID        uint   `gorm:"index" json:"deck_id"`
	AnkiID        string `gorm:"index;size:32" json:"anki_id"`
	Name          string `gorm:"size:256" json:"name"`
	FieldsJSON    string `gorm:"type:text" json:"fields_json,omitempty"`
	TemplatesJSON string `gorm:"type:text" json:"templates_json,omitempty"`
	CSS           string `gorm:"type:text" json:"css,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Cards     []Card    `gorm:"many2many:card_tags;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type ImportSession struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Filename      string       `gorm:"size:1024" json:"filename"`
	UploadKey     string       `gorm:"size:64" json:"-"`
	Status        ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	DeckID        *uint        `gorm:"index" json:"deck_id,omitempty"`
	TotalCards    int          `json:"total_cards"`
	ImportedCards int          `json:"imported_cards"`
	SkippedCards  int          `json:"skipped_cards"`
	Errors        string       `gorm:"type:text" json:"errors,omitempty"` // JSON array of messages
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

func (Deck) TableName() string {
	return "decks"
}

func (Card) TableName() string {
	return "cards"
}

func (NoteType) TableName() string {
	return "note_types"
}

func (Tag) TableName() string {
	return "tags"
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
