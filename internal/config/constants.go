package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./deckhand.db"

	// DefaultUploadsDir is where uploaded deck archives are kept
	DefaultUploadsDir = "./uploads"
)
