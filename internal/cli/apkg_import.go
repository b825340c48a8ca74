package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deckhand/internal/apkg"
	"deckhand/internal/config"
	"deckhand/internal/database"
	"deckhand/internal/services"
)

// ApkgImportCommand handles importing an Anki .apkg export into the local
// database.
type ApkgImportCommand struct {
	ArchivePath  string
	DatabasePath string
	Tags         string
	Verbose      bool
	DryRun       bool
}

func NewApkgImportCommand() *ApkgImportCommand {
	return &ApkgImportCommand{}
}

func (cmd *ApkgImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("apkg-import", flag.ExitOnError)

	fs.StringVar(&cmd.ArchivePath, "file", "", "Path to the .apkg export file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file for storing imported decks")
	fs.StringVar(&cmd.Tags, "tags", "", "Comma-separated tags added to every imported card")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s apkg-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import an Anki .apkg deck export into a local database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a deck:\n")
		fmt.Fprintf(os.Stderr, "  %s apkg-import -file geography.apkg\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s apkg-import -file geography.apkg -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ArchivePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ApkgImportCommand) Run() error {
	fmt.Println("Deck Import")
	fmt.Println("===========")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.ArchivePath); os.IsNotExist(err) {
		return fmt.Errorf("archive not found: %s", cmd.ArchivePath)
	}

	fmt.Printf("File: %s\n", cmd.ArchivePath)
	fmt.Println("\nParsing deck archive...")

	parser := apkg.NewParser()
	deck, err := parser.Parse(cmd.ArchivePath)
	if err != nil {
		return fmt.Errorf("failed to parse archive: %w", err)
	}

	fmt.Printf("Found deck %q with %d cards, %d note types, %d media files\n",
		deck.Name, len(deck.Cards), len(deck.NoteTypes), len(deck.MediaFiles))

	if cmd.Verbose {
		fmt.Println("\n=== Note Types ===")
		for i, nt := range deck.NoteTypes {
			fmt.Printf("%d. %s (%d fields, %d templates)\n",
				i+1, nt.Name, len(nt.Fields), len(nt.Templates))
		}
		fmt.Println("\n=== Cards ===")
		for i, card := range deck.Cards {
			front := card.Front
			if len(front) > 60 {
				front = front[:60] + "..."
			}
			fmt.Printf("%d. [%s] %s\n", i+1, card.NoteType, front)
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	importer := services.NewImportService(db)
	result, err := importer.ImportParsedDeck(deck, filepath.Base(cmd.ArchivePath), "", splitTags(cmd.Tags))
	if err != nil {
		return fmt.Errorf("failed to import deck: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Deck: %s (id %d)\n", result.DeckName, result.DeckID)
	fmt.Printf("Cards saved: %d/%d\n", result.ImportedCards, result.TotalCards)
	if result.SkippedCards > 0 {
		fmt.Printf("Cards skipped: %d\n", result.SkippedCards)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", errMsg)
		}
	}

	fmt.Println("\nImport complete!")
	return nil
}

func splitTags(raw string) []string {
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
