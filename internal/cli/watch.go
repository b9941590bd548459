package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/pocketbook-sync/internal/config"
	"github.com/mrlokans/pocketbook-sync/internal/scheduler"
)

// WatchCommand runs the sync pipeline on a cron schedule until interrupted.
type WatchCommand struct {
	Schedule string
	Sync     *SyncCommand
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand() *WatchCommand {
	return &WatchCommand{Sync: NewSyncCommand()}
}

// ParseFlags parses command line flags
func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	cfg := config.NewConfig()

	fs.StringVar(&cmd.Schedule, "schedule", "0 * * * *", "Cron schedule for sync runs")
	fs.StringVar(&cmd.Sync.DevicePath, "device-db", cfg.PocketBook.DatabasePath, "Path to the PocketBook books.db database")
	fs.StringVar(&cmd.Sync.VaultDir, "vault", cfg.Obsidian.VaultDir, "Path to the Obsidian vault")
	fs.StringVar(&cmd.Sync.FolderName, "folder", cfg.Obsidian.HighlightsFolder, "Folder within the vault for exported notes")
	fs.StringVar(&cmd.Sync.CalibreDir, "calibre", cfg.Calibre.LibraryDir, "Path to the Calibre library (optional)")
	fs.StringVar(&cmd.Sync.DatabasePath, "db", cfg.Database.Path, "Path to the local library database (optional)")
	fs.BoolVar(&cmd.Sync.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run the highlights sync periodically on a cron schedule.\n")
		fmt.Fprintf(os.Stderr, "Stops cleanly on interrupt; a run in progress is never cut mid-file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s watch -vault ~/Obsidian\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s watch -schedule \"*/30 * * * *\" -vault ~/Obsidian\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Sync.SaveToDB = cmd.Sync.DatabasePath != ""

	return nil
}

// Run starts the scheduler and blocks until interrupted.
func (cmd *WatchCommand) Run() error {
	if cmd.Sync.VaultDir == "" {
		return fmt.Errorf("no vault directory configured: use -vault or OBSIDIAN_VAULT_DIR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("⏰ Watching for highlights (schedule: %s). Press Ctrl+C to stop.\n", cmd.Schedule)

	return scheduler.New(cmd.Schedule, cmd.Sync.Run).Start(ctx)
}
