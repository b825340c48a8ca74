package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"deckhand/internal/entities"
	"deckhand/internal/services"
	"deckhand/internal/uploads"
)

// SessionStore loads import sessions for background processing.
type SessionStore interface {
	GetImportSession(id uint) (*entities.ImportSession, error)
}

// ImportDeckTask parses an uploaded deck archive and persists the result
// off-request, updating the import session as it goes.
type ImportDeckTask struct {
	SessionID uint     `json:"session_id"`
	UploadKey string   `json:"upload_key"`
	Filename  string   `json:"filename"`
	ExtraTags []string `json:"extra_tags,omitempty"`
}

// Config returns the queue configuration for deck import tasks.
func (t ImportDeckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_deck",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportDeckProcessor creates a processor function for ImportDeckTask.
func ImportDeckProcessor(importer *services.ImportService, sessions SessionStore, store *uploads.Store) backlite.QueueProcessor[ImportDeckTask] {
	return func(ctx context.Context, task ImportDeckTask) error {
		if importer == nil || sessions == nil || store == nil {
			return fmt.Errorf("deck importer not configured")
		}

		session, err := sessions.GetImportSession(task.SessionID)
		if err != nil {
			return fmt.Errorf("load import session %d: %w", task.SessionID, err)
		}

		result, err := importer.ImportArchive(store.Path(task.UploadKey), task.Filename, task.UploadKey, task.ExtraTags, session)
		if err != nil {
			return fmt.Errorf("import deck %s: %w", task.Filename, err)
		}

		log.Printf("[TASK] Imported deck %q from %s: %d/%d cards",
			result.DeckName, task.Filename, result.ImportedCards, result.TotalCards)
		return nil
	}
}

// NewImportDeckQueue creates a backlite queue for deck import tasks.
func NewImportDeckQueue(importer *services.ImportService, sessions SessionStore, store *uploads.Store) backlite.Queue {
	return backlite.NewQueue(ImportDeckProcessor(importer, sessions, store))
}
