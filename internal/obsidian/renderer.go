package obsidian

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mrlokans/pocketbook-sync/internal/calibre"
	"github.com/mrlokans/pocketbook-sync/internal/pocketbook"
)

// Renderer renders extracted books to Obsidian-compatible markdown.
// The document grammar is fixed: for identical input and an unchanged
// catalog, output is byte-identical apart from the sync date fields.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// FormatTimestamp formats an epoch timestamp as a readable local date-time.
// Returns "" for the zero timestamp.
func (r *Renderer) FormatTimestamp(timestamp int64) string {
	if timestamp == 0 {
		return ""
	}
	return time.Unix(timestamp, 0).Format("2006-01-02 15:04")
}

// RenderBook renders a complete note document for one book. The catalog match
// is optional; when present together with a catalog, book-level and
// per-highlight calibre:// links are emitted.
func (r *Renderer) RenderBook(book *pocketbook.Book, match *calibre.Match, catalog *calibre.Catalog) string {
	now := r.now()
	var lines []string

	// Frontmatter
	lines = append(lines, "---")
	lines = append(lines, fmt.Sprintf("title: %s", book.Title))
	lines = append(lines, fmt.Sprintf("author: %s", book.Author))
	lines = append(lines, "type: book-highlights")
	lines = append(lines, fmt.Sprintf("sync_date: %s", now.Format("2006-01-02")))
	if match != nil {
		lines = append(lines, fmt.Sprintf("calibre_id: %d", match.ID))
	}
	lines = append(lines, "---")
	lines = append(lines, "")

	// Title and metadata
	lines = append(lines, fmt.Sprintf("# %s", book.Title))
	lines = append(lines, fmt.Sprintf("**Author:** %s", book.Author))
	lines = append(lines, fmt.Sprintf("**Synced:** %s", now.Format("2006-01-02 15:04")))

	// Book-level links when the Calibre library is available
	if match != nil && catalog != nil {
		lines = append(lines, "")
		lines = append(lines, "**Open in Calibre:**")

		// calibre:// URL - use _ for current library
		lines = append(lines, fmt.Sprintf("- [View in Calibre](<calibre://show-book/_/%d>)", match.ID))

		// file:// link to the EPUB, only when the file is actually there
		epubPath := catalog.EpubPath(match)
		if _, err := os.Stat(epubPath); err == nil {
			lines = append(lines, fmt.Sprintf("- [Open EPUB file](<%s>)", fileURI(epubPath)))
		}
	}

	lines = append(lines, "")
	lines = append(lines, "---")
	lines = append(lines, "")

	// Highlights
	lines = append(lines, "## Highlights")
	lines = append(lines, "")

	for idx, highlight := range book.Highlights {
		lines = append(lines, fmt.Sprintf("> %s", highlight.Text))
		lines = append(lines, "")

		if highlight.Note != "" {
			lines = append(lines, fmt.Sprintf("**Note:** %s", highlight.Note))
			lines = append(lines, "")
		}

		var metadataParts []string
		if highlight.Page > 0 {
			metadataParts = append(metadataParts, fmt.Sprintf("Page %d", highlight.Page))
		}
		if timestamp := r.FormatTimestamp(highlight.Timestamp); timestamp != "" {
			metadataParts = append(metadataParts, fmt.Sprintf("Added: %s", timestamp))
		}
		if len(metadataParts) > 0 {
			lines = append(lines, fmt.Sprintf("*%s*", strings.Join(metadataParts, " | ")))
		}

		if match != nil && catalog != nil {
			if highlight.EpubCFI != "" {
				// URL-encode the EPUB CFI so Calibre opens at the exact position
				encoded := url.QueryEscape(highlight.EpubCFI)
				lines = append(lines, fmt.Sprintf("[📖 Open in Calibre](<calibre://view-book/_/%d/EPUB?open_at=%s>)", match.ID, encoded))
			} else {
				lines = append(lines, fmt.Sprintf("[📖 Open in Calibre](<calibre://view-book/_/%d/EPUB>)", match.ID))
			}
		}

		lines = append(lines, "")

		// Separator between highlights, not after the last one
		if idx < len(book.Highlights)-1 {
			lines = append(lines, "---")
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

// fileURI converts an absolute path to a file:// URI with percent-encoding.
func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
