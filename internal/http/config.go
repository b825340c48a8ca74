package http

import (
	"deckhand/internal/database"
	"deckhand/internal/services"
	"deckhand/internal/tasks"
	"deckhand/internal/uploads"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	ImportService *services.ImportService
	UploadStore   *uploads.Store

	// Task queue client (optional; enables async imports)
	TaskClient  *tasks.Client
	TaskWorkers int

	// Upload size cap in bytes
	MaxUploadSize int64

	// Application info
	Version string
}
