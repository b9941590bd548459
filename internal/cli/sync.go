package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/pocketbook-sync/internal/calibre"
	"github.com/mrlokans/pocketbook-sync/internal/config"
	"github.com/mrlokans/pocketbook-sync/internal/database"
	"github.com/mrlokans/pocketbook-sync/internal/database/books"
	"github.com/mrlokans/pocketbook-sync/internal/obsidian"
	"github.com/mrlokans/pocketbook-sync/internal/pocketbook"
)

// SyncCommand extracts highlights from a PocketBook device and writes
// Obsidian notes, optionally enriched with Calibre links.
type SyncCommand struct {
	DevicePath   string
	VaultDir     string
	FolderName   string
	CalibreDir   string
	DatabasePath string
	SaveToDB     bool // true when a database path was configured
	Verbose      bool
	DryRun       bool
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags. Environment variables provide the
// defaults; flags override them.
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	cfg := config.NewConfig()

	fs.StringVar(&cmd.DevicePath, "device-db", cfg.PocketBook.DatabasePath, "Path to the PocketBook books.db database")
	fs.StringVar(&cmd.VaultDir, "vault", cfg.Obsidian.VaultDir, "Path to the Obsidian vault")
	fs.StringVar(&cmd.FolderName, "folder", cfg.Obsidian.HighlightsFolder, "Folder within the vault for exported notes")
	fs.StringVar(&cmd.CalibreDir, "calibre", cfg.Calibre.LibraryDir, "Path to the Calibre library (optional, enables deep links)")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local library database (if specified, highlights are also imported there)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be exported without writing files")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Extract highlights from a PocketBook device and export them as\n")
		fmt.Fprintf(os.Stderr, "Obsidian-compatible markdown, one note per book.\n\n")
		fmt.Fprintf(os.Stderr, "When a Calibre library is configured, each note links back to the\n")
		fmt.Fprintf(os.Stderr, "matching book via calibre:// URLs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -vault ~/Obsidian\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -vault ~/Obsidian -calibre ~/Calibre\\ Library\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -device-db /Volumes/PB626/system/config/books.db -vault ~/Obsidian\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -vault ~/Obsidian -db ./library.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.SaveToDB = cmd.DatabasePath != ""

	return nil
}

// Run executes the sync command
func (cmd *SyncCommand) Run() error {
	fmt.Println("📚 PocketBook Highlights Sync")
	fmt.Println("=============================")

	if cmd.VaultDir == "" {
		return fmt.Errorf("no vault directory configured: use -vault or OBSIDIAN_VAULT_DIR")
	}

	if cmd.DryRun {
		fmt.Println("🔍 DRY RUN MODE - No files will be written")
		fmt.Println()
	}

	reader, err := pocketbook.NewReader(cmd.DevicePath)
	if err != nil {
		return fmt.Errorf("failed to open device database: %w", err)
	}

	fmt.Printf("📁 Device DB: %s\n", reader.GetDBPath())

	fmt.Println("\n📖 Extracting highlights...")
	extracted, err := reader.GetBooks()
	if err != nil {
		return fmt.Errorf("failed to extract highlights: %w", err)
	}

	if len(extracted) == 0 {
		fmt.Println("ℹ️  No highlights found on the device")
		return nil
	}

	totalHighlights := 0
	for _, book := range extracted {
		totalHighlights += len(book.Highlights)
	}

	fmt.Printf("📚 Found %d books with %d total highlights\n", len(extracted), totalHighlights)

	if cmd.Verbose {
		fmt.Println("\n=== Books Found ===")
		for i, book := range extracted {
			fmt.Printf("%d. \"%s\" by %s (%d highlights)\n",
				i+1, book.Title, book.Author, len(book.Highlights))
		}
	}

	if cmd.DryRun {
		fmt.Println("\n✅ Dry run complete. Use without -dry-run to export.")
		return nil
	}

	absVaultDir, err := filepath.Abs(cmd.VaultDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for vault: %w", err)
	}
	cmd.VaultDir = absVaultDir

	var catalog *calibre.Catalog
	if cmd.CalibreDir != "" {
		absCalibreDir, err := filepath.Abs(cmd.CalibreDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for calibre library: %w", err)
		}
		catalog = calibre.NewCatalog(absCalibreDir)
		fmt.Printf("🔗 Calibre library: %s\n", absCalibreDir)
	}

	fmt.Printf("\n📤 Exporting to: %s\n", filepath.Join(cmd.VaultDir, cmd.FolderName))

	exporter := obsidian.NewExporter(cmd.VaultDir, cmd.FolderName, catalog)
	result, err := exporter.Export(extracted)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	for _, title := range result.FileOrder {
		path := result.ExportedFiles[title]
		if exporter.Match(title) != nil {
			fmt.Printf("  ✓ Created: %s (with Calibre links)\n", filepath.Base(path))
		} else {
			fmt.Printf("  ✓ Created: %s\n", filepath.Base(path))
		}
	}

	fmt.Printf("\n✅ Sync complete! Created %d file(s).\n", len(result.ExportedFiles))
	if catalog != nil {
		fmt.Printf("🔗 Matched %d book(s) to the Calibre library.\n", result.MatchedBooks)
	}

	if cmd.SaveToDB {
		if err := cmd.importToDatabase(extracted); err != nil {
			return err
		}
	}

	return nil
}

// importToDatabase saves extracted books into the local library database.
func (cmd *SyncCommand) importToDatabase(extracted []pocketbook.Book) error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\n💾 Saving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := books.NewRepository(db.DB)
	converted := pocketbook.ConvertToEntities(extracted)

	var savedBooks, savedHighlights int
	for i := range converted {
		book := &converted[i]

		if cmd.Verbose {
			fmt.Printf("  → \"%s\" by %s (%d highlights)...\n",
				book.Title, book.Author, len(book.Highlights))
		}

		if err := repo.SaveBook(book, db.GetSourceByName); err != nil {
			return fmt.Errorf("failed to save %q: %w", book.Title, err)
		}

		savedBooks++
		savedHighlights += len(book.Highlights)
	}

	fmt.Printf("💾 Saved %d book(s) with %d highlight(s)\n", savedBooks, savedHighlights)
	return nil
}
