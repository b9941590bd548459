// Package calibre looks up books in a Calibre library's metadata.db to
// produce deep links for exported notes. Lookup is best-effort: a missing
// library or a storage error downgrades to "no match" and never aborts a sync.
package calibre

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Match identifies a book found in the Calibre library.
type Match struct {
	ID       int64  // books.id, used in calibre:// URLs
	Title    string // books.title as stored in the library
	Path     string // books.path, directory relative to the library root
	Filename string // data.name, file basename without extension
}

// Catalog reads a Calibre library's metadata database.
type Catalog struct {
	libraryPath string
}

// NewCatalog creates a catalog for the given library directory.
func NewCatalog(libraryPath string) *Catalog {
	return &Catalog{libraryPath: libraryPath}
}

// LibraryPath returns the library root directory.
func (c *Catalog) LibraryPath() string {
	return c.libraryPath
}

// EpubPath returns the absolute path of the matched EPUB file.
func (c *Catalog) EpubPath(m *Match) string {
	return filepath.Join(c.libraryPath, m.Path, m.Filename+".epub")
}

// LookupBook finds the library entry for a book title. An exact title match
// with an EPUB file takes precedence; otherwise a substring match returns at
// most one result. Returns nil when there is no match, when the library has
// no metadata database, or when the lookup fails (failures are logged).
func (c *Catalog) LookupBook(title string) *Match {
	metadataPath := filepath.Join(c.libraryPath, "metadata.db")
	if _, err := os.Stat(metadataPath); os.IsNotExist(err) {
		return nil
	}

	match, err := c.lookup(metadataPath, title)
	if err != nil {
		log.Printf("Calibre lookup for %q failed: %v", title, err)
		return nil
	}
	return match
}

func (c *Catalog) lookup(metadataPath, title string) (*Match, error) {
	db, err := sql.Open("sqlite3", metadataPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata database: %w", err)
	}
	defer db.Close()

	exactQuery := `
		SELECT books.id, books.title, books.path, data.name
		FROM books
		JOIN data ON books.id = data.book
		WHERE books.title = ? AND data.format = 'EPUB'
	`

	match, err := scanMatch(db.QueryRow(exactQuery, title))
	if err != nil {
		return nil, err
	}
	if match != nil {
		return match, nil
	}

	fuzzyQuery := `
		SELECT books.id, books.title, books.path, data.name
		FROM books
		JOIN data ON books.id = data.book
		WHERE books.title LIKE ? AND data.format = 'EPUB'
		LIMIT 1
	`

	return scanMatch(db.QueryRow(fuzzyQuery, "%"+title+"%"))
}

func scanMatch(row *sql.Row) (*Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.Title, &m.Path, &m.Filename)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return &m, nil
}
