package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"deckhand/internal/apkg"
	"deckhand/internal/database"
	"deckhand/internal/services"
	"deckhand/internal/tasks"
	"deckhand/internal/uploads"
)

// Default maximum archive size (200 MB); large shared decks with media get
// close to this.
const DefaultMaxUploadSize = 200 * 1024 * 1024

type ImportController struct {
	importer      *services.ImportService
	db            *database.Database
	store         *uploads.Store
	taskClient    *tasks.Client
	maxUploadSize int64
}

func NewImportController(importer *services.ImportService, db *database.Database, store *uploads.Store, taskClient *tasks.Client, maxUploadSize int64) *ImportController {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &ImportController{
		importer:      importer,
		db:            db,
		store:         store,
		taskClient:    taskClient,
		maxUploadSize: maxUploadSize,
	}
}

type ImportResponse struct {
	SessionID     uint     `json:"session_id"`
	Status        string   `json:"status"`
	DeckID        uint     `json:"deck_id,omitempty"`
	DeckName      string   `json:"deck_name,omitempty"`
	TotalCards    int      `json:"total_cards,omitempty"`
	ImportedCards int      `json:"imported_cards,omitempty"`
	SkippedCards  int      `json:"skipped_cards,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// Import accepts a multipart .apkg upload. The archive is persisted to the
// upload store first so media stays resolvable after the import; the parse
// itself runs inline, or in the background when async=1 is requested and a
// task queue is configured.
func (c *ImportController) Import(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("apkg_file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "apkg_file not provided"})
		return
	}
	defer file.Close()

	if err := validateArchiveUpload(header.Filename, header.Size, c.maxUploadSize); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := c.saveUpload(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	extraTags := parseTagsParam(ctx.PostForm("tags"))

	session, err := c.db.CreateImportSession(header.Filename, key)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import session"})
		return
	}

	if ctx.Query("async") == "1" && c.taskClient != nil {
		_, err := c.taskClient.Add(tasks.ImportDeckTask{
			SessionID: session.ID,
			UploadKey: key,
			Filename:  header.Filename,
			ExtraTags: extraTags,
		}).Save()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue import task"})
			return
		}
		ctx.JSON(http.StatusAccepted, ImportResponse{
			SessionID: session.ID,
			Status:    string(session.Status),
		})
		return
	}

	result, err := c.importer.ImportArchive(c.store.Path(key), header.Filename, key, extraTags, session)
	if err != nil {
		status := http.StatusInternalServerError
		var formatErr *apkg.FormatError
		if errors.As(err, &formatErr) {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, gin.H{
			"error":      err.Error(),
			"session_id": session.ID,
		})
		return
	}

	ctx.JSON(http.StatusOK, ImportResponse{
		SessionID:     session.ID,
		Status:        string(session.Status),
		DeckID:        result.DeckID,
		DeckName:      result.DeckName,
		TotalCards:    result.TotalCards,
		ImportedCards: result.ImportedCards,
		SkippedCards:  result.SkippedCards,
		Errors:        result.Errors,
	})
}

// GetSession reports import progress.
func (c *ImportController) GetSession(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := c.db.GetImportSession(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "import session not found"})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// ListSessions returns recent import sessions, newest first.
func (c *ImportController) ListSessions(ctx *gin.Context) {
	sessions, err := c.db.GetRecentImportSessions(50)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import sessions"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (c *ImportController) saveUpload(file io.Reader) (string, error) {
	limited := io.LimitReader(file, c.maxUploadSize+1)
	key, err := c.store.Save(limited)
	if err != nil {
		return "", fmt.Errorf("failed to save upload")
	}
	return key, nil
}

func validateArchiveUpload(filename string, size, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file too large (max %d MB)", maxSize/(1024*1024))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".apkg" && ext != ".zip" && ext != "" {
		return fmt.Errorf("invalid file type: expected .apkg file")
	}
	return nil
}

func parseTagsParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
