package obsidian

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pocketbook-sync/internal/calibre"
	"github.com/mrlokans/pocketbook-sync/internal/pocketbook"
)

// fixedRenderer returns a renderer with a pinned clock so output is stable
func fixedRenderer() *Renderer {
	r := NewRenderer()
	r.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
	}
	return r
}

func TestRenderBook_Grammar(t *testing.T) {
	book := &pocketbook.Book{
		Title:  "Solaris",
		Author: "Stanisław Lem",
		Highlights: []pocketbook.Highlight{
			{Text: "First", Page: 5},
			{Text: "Second", Note: "thought"},
		},
	}

	got := fixedRenderer().RenderBook(book, nil, nil)

	expected := strings.Join([]string{
		"---",
		"title: Solaris",
		"author: Stanisław Lem",
		"type: book-highlights",
		"sync_date: 2024-03-15",
		"---",
		"",
		"# Solaris",
		"**Author:** Stanisław Lem",
		"**Synced:** 2024-03-15 10:30",
		"",
		"---",
		"",
		"## Highlights",
		"",
		"> First",
		"",
		"*Page 5*",
		"",
		"---",
		"",
		"> Second",
		"",
		"**Note:** thought",
		"",
		"",
	}, "\n")

	assert.Equal(t, expected, got)
}

func TestRenderBook_Deterministic(t *testing.T) {
	book := &pocketbook.Book{
		Title:  "Solaris",
		Author: "Stanisław Lem",
		Highlights: []pocketbook.Highlight{
			{Text: "Quote", Page: 12, Timestamp: 1700000000},
		},
	}

	renderer := fixedRenderer()
	first := renderer.RenderBook(book, nil, nil)
	second := renderer.RenderBook(book, nil, nil)

	assert.Equal(t, first, second)
}

func TestRenderBook_MetadataLine(t *testing.T) {
	addedAt := time.Unix(1700000000, 0).Format("2006-01-02 15:04")

	tests := []struct {
		name      string
		highlight pocketbook.Highlight
		contains  string
		absent    string
	}{
		{
			name:      "page and timestamp",
			highlight: pocketbook.Highlight{Text: "q", Page: 42, Timestamp: 1700000000},
			contains:  fmt.Sprintf("*Page 42 | Added: %s*", addedAt),
		},
		{
			name:      "page only",
			highlight: pocketbook.Highlight{Text: "q", Page: 42},
			contains:  "*Page 42*",
			absent:    "Added:",
		},
		{
			name:      "timestamp only",
			highlight: pocketbook.Highlight{Text: "q", Timestamp: 1700000000},
			contains:  fmt.Sprintf("*Added: %s*", addedAt),
			absent:    "Page",
		},
		{
			name:      "neither omits the whole line",
			highlight: pocketbook.Highlight{Text: "q"},
			absent:    "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := &pocketbook.Book{
				Title:      "T",
				Author:     "A",
				Highlights: []pocketbook.Highlight{tt.highlight},
			}

			got := fixedRenderer().RenderBook(book, nil, nil)

			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
			if tt.absent != "" {
				section := got[strings.Index(got, "## Highlights"):]
				assert.NotContains(t, section, tt.absent)
			}
		})
	}
}

func TestRenderBook_CalibreLinks(t *testing.T) {
	libraryDir := t.TempDir()
	catalog := calibre.NewCatalog(libraryDir)
	match := &calibre.Match{
		ID:       7,
		Title:    "Solaris",
		Path:     "Stanislaw Lem/Solaris (7)",
		Filename: "Solaris - Stanislaw Lem",
	}

	book := &pocketbook.Book{
		Title:  "Solaris",
		Author: "Stanisław Lem",
		Highlights: []pocketbook.Highlight{
			{Text: "Positioned", EpubCFI: "epubcfi(/6/96!/4/40/1:404)"},
			{Text: "Unpositioned"},
		},
	}

	got := fixedRenderer().RenderBook(book, match, catalog)

	assert.Contains(t, got, "calibre_id: 7")
	assert.Contains(t, got, "**Open in Calibre:**")
	assert.Contains(t, got, "- [View in Calibre](<calibre://show-book/_/7>)")

	// The EPUB does not exist on disk, so no file link
	assert.NotContains(t, got, "Open EPUB file")

	// Deep link with the URL-escaped position for the first highlight
	assert.Contains(t, got,
		"[📖 Open in Calibre](<calibre://view-book/_/7/EPUB?open_at=epubcfi%28%2F6%2F96%21%2F4%2F40%2F1%3A404%29>)")
	// Plain deep link for the second
	assert.Contains(t, got, "[📖 Open in Calibre](<calibre://view-book/_/7/EPUB>)")
}

func TestRenderBook_EpubFileLink(t *testing.T) {
	libraryDir := t.TempDir()
	catalog := calibre.NewCatalog(libraryDir)
	match := &calibre.Match{ID: 7, Title: "Solaris", Path: "lem", Filename: "solaris"}

	epubDir := filepath.Join(libraryDir, "lem")
	require.NoError(t, os.MkdirAll(epubDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(epubDir, "solaris.epub"), []byte("epub"), 0644))

	book := &pocketbook.Book{
		Title:      "Solaris",
		Author:     "Stanisław Lem",
		Highlights: []pocketbook.Highlight{{Text: "q"}},
	}

	got := fixedRenderer().RenderBook(book, match, catalog)

	assert.Contains(t, got, "- [Open EPUB file](<file://")
	assert.Contains(t, got, "solaris.epub>)")
}

func TestRenderBook_NoCatalogNoLinks(t *testing.T) {
	book := &pocketbook.Book{
		Title:      "Solaris",
		Author:     "Stanisław Lem",
		Highlights: []pocketbook.Highlight{{Text: "q", EpubCFI: "epubcfi(/6/2!/4)"}},
	}

	got := fixedRenderer().RenderBook(book, nil, nil)

	assert.NotContains(t, got, "calibre")
	assert.NotContains(t, got, "Open in Calibre")
}
