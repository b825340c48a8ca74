package http

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"deckhand/internal/apkg"
	"deckhand/internal/database"
	"deckhand/internal/uploads"
)

type MediaController struct {
	db     *database.Database
	store  *uploads.Store
	parser *apkg.Parser
}

func NewMediaController(db *database.Database, store *uploads.Store) *MediaController {
	return &MediaController{
		db:     db,
		store:  store,
		parser: apkg.NewParser(),
	}
}

// GetMedia serves a media payload from the deck's stored source archive.
// The archive is re-opened per request; media is an occasional fetch, not a
// hot path.
func (c *MediaController) GetMedia(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid deck id"})
		return
	}
	name := ctx.Param("name")

	deck, err := c.db.GetDeckByID(id)
	if err == gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deck"})
		return
	}

	if deck.UploadKey == "" || !c.store.Exists(deck.UploadKey) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "source archive no longer available"})
		return
	}

	data, err := c.parser.GetMediaFile(c.store.Path(deck.UploadKey), name)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read archive"})
		return
	}
	if data == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "media file not found"})
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.Data(http.StatusOK, contentType, data)
}
