package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"deckhand/internal/apkg"
)

// MediaExtractCommand lists or extracts media files bundled in an .apkg
// export.
type MediaExtractCommand struct {
	ArchivePath string
	Name        string
	OutputDir   string
	List        bool
}

func NewMediaExtractCommand() *MediaExtractCommand {
	return &MediaExtractCommand{}
}

func (cmd *MediaExtractCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("media-extract", flag.ExitOnError)

	fs.StringVar(&cmd.ArchivePath, "file", "", "Path to the .apkg export file (required)")
	fs.StringVar(&cmd.Name, "name", "", "Extract a single media file by its original name")
	fs.StringVar(&cmd.OutputDir, "output", ".", "Directory to extract media files into")
	fs.BoolVar(&cmd.List, "list", false, "List media files without extracting")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s media-extract -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List or extract media files bundled in an Anki .apkg export.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # List bundled media:\n")
		fmt.Fprintf(os.Stderr, "  %s media-extract -file geography.apkg -list\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Extract one file:\n")
		fmt.Fprintf(os.Stderr, "  %s media-extract -file geography.apkg -name sound.mp3 -output ./media\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ArchivePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *MediaExtractCommand) Run() error {
	if _, err := os.Stat(cmd.ArchivePath); os.IsNotExist(err) {
		return fmt.Errorf("archive not found: %s", cmd.ArchivePath)
	}

	parser := apkg.NewParser()
	manifest := parser.ListMediaFiles(cmd.ArchivePath)

	if len(manifest) == 0 {
		fmt.Println("No media files found in archive")
		return nil
	}

	names := make([]string, 0, len(manifest))
	for _, original := range manifest {
		names = append(names, original)
	}
	sort.Strings(names)

	if cmd.List {
		fmt.Printf("%d media files:\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	if cmd.Name != "" {
		names = []string{cmd.Name}
	}

	if err := os.MkdirAll(cmd.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	extracted := 0
	for _, name := range names {
		data, err := parser.GetMediaFile(cmd.ArchivePath, name)
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		if data == nil {
			fmt.Printf("  [SKIP] %s: not found in archive\n", name)
			continue
		}

		dest := filepath.Join(cmd.OutputDir, filepath.Base(name))
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		fmt.Printf("  [OK] %s -> %s\n", name, dest)
		extracted++
	}

	fmt.Printf("\nExtracted %d media files to %s\n", extracted, cmd.OutputDir)
	return nil
}
