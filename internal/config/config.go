package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		PocketBook
		Obsidian
		Calibre
		Database
	}

	PocketBook struct {
		DatabasePath string // Path to the device books.db
	}
	Obsidian struct {
		VaultDir         string // Obsidian vault root
		HighlightsFolder string // Folder within the vault for exported notes
	}
	Calibre struct {
		LibraryDir string // Calibre library root (optional, empty disables links)
	}
	Database struct {
		Path string // Local library database, empty disables the import
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("pocketbook_db_path", DefaultPocketBookDatabasePath)
	v.SetDefault("obsidian_vault_dir", "")
	v.SetDefault("highlights_folder", DefaultHighlightsFolder)
	v.SetDefault("calibre_library_dir", "")
	v.SetDefault("database_path", "")

	return &Config{
		PocketBook: PocketBook{
			DatabasePath: v.GetString("POCKETBOOK_DB_PATH"),
		},
		Obsidian: Obsidian{
			VaultDir:         v.GetString("OBSIDIAN_VAULT_DIR"),
			HighlightsFolder: v.GetString("HIGHLIGHTS_FOLDER"),
		},
		Calibre: Calibre{
			LibraryDir: v.GetString("CALIBRE_LIBRARY_DIR"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
	}
}
