package obsidian

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/pocketbook-sync/internal/calibre"
	"github.com/mrlokans/pocketbook-sync/internal/pocketbook"
	"github.com/mrlokans/pocketbook-sync/internal/utils"
)

// Exporter writes one markdown note per book into the vault's highlights
// folder. Files are regenerated whole on every run, never merged with prior
// content on disk.
type Exporter struct {
	VaultDir   string
	FolderName string
	Renderer   *Renderer

	catalog *calibre.Catalog
	matches map[string]*calibre.Match // title -> lookup result, cached per run
}

// NewExporter creates an exporter for the given vault. The catalog may be nil
// when no Calibre library is configured.
func NewExporter(vaultDir, folderName string, catalog *calibre.Catalog) *Exporter {
	return &Exporter{
		VaultDir:   vaultDir,
		FolderName: folderName,
		Renderer:   NewRenderer(),
		catalog:    catalog,
		matches:    make(map[string]*calibre.Match),
	}
}

// ExportResult contains information about an export operation
type ExportResult struct {
	ExportedFiles map[string]string // book title -> file path
	FileOrder     []string          // book titles in export order
	MatchedBooks  int               // books matched to the Calibre library
}

// lookupMatch queries the catalog once per title and caches the result, so
// the summary reuses the links that were actually written.
func (e *Exporter) lookupMatch(title string) *calibre.Match {
	if e.catalog == nil {
		return nil
	}
	if match, ok := e.matches[title]; ok {
		return match
	}
	match := e.catalog.LookupBook(title)
	e.matches[title] = match
	return match
}

// Export writes all books to markdown files. A failed directory creation or
// file write aborts the export: unlike catalog lookups, losing output is not
// something to paper over.
func (e *Exporter) Export(books []pocketbook.Book) (*ExportResult, error) {
	outputDir := filepath.Join(e.VaultDir, e.FolderName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create highlights folder: %w", err)
	}

	result := &ExportResult{
		ExportedFiles: make(map[string]string),
	}

	for i := range books {
		book := &books[i]
		match := e.lookupMatch(book.Title)
		if match != nil {
			result.MatchedBooks++
		}

		content := e.Renderer.RenderBook(book, match, e.catalog)

		filename := utils.SanitizeFilename(book.Title) + ".md"
		outputFile := filepath.Join(outputDir, filename)

		// Whole-file write: an interrupted run leaves no partial notes
		if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %q: %w", outputFile, err)
		}

		result.ExportedFiles[book.Title] = outputFile
		result.FileOrder = append(result.FileOrder, book.Title)
	}

	return result, nil
}

// Match returns the cached catalog match for a title, if the title was
// exported during this run.
func (e *Exporter) Match(title string) *calibre.Match {
	return e.matches[title]
}
