package config

// Default paths
const (
	// DefaultPocketBookDatabasePath is where PocketBook devices expose their
	// annotation database when mounted over USB
	DefaultPocketBookDatabasePath = "/Volumes/PocketBook/system/config/books.db"

	// DefaultHighlightsFolder is the folder created inside the vault
	DefaultHighlightsFolder = "Book Highlights"
)
