package http

import "github.com/gin-gonic/gin"

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.UploadStore, cfg.Version)
	importController := NewImportController(cfg.ImportService, cfg.Database, cfg.UploadStore, cfg.TaskClient, cfg.MaxUploadSize)
	decksController := NewDecksController(cfg.Database)
	mediaController := NewMediaController(cfg.Database, cfg.UploadStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Import endpoints
	router.POST("/api/imports", importController.Import)
	router.GET("/api/imports", importController.ListSessions)
	router.GET("/api/imports/:id", importController.GetSession)

	// Deck API endpoints
	router.GET("/api/decks", decksController.GetAllDecks)
	router.GET("/api/decks/stats", decksController.GetDeckStats)
	router.GET("/api/decks/:id", decksController.GetDeck)
	router.GET("/api/decks/:id/cards", decksController.GetDeckCards)
	router.DELETE("/api/decks/:id", decksController.DeleteDeck)

	// Media endpoint, served from the stored source archive
	router.GET("/api/decks/:id/media/:name", mediaController.GetMedia)

	return router
}
