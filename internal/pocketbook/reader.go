package pocketbook

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Reader extracts highlights from a PocketBook books.db database.
// The database is opened read-only for the duration of one call.
type Reader struct {
	dbPath string
}

// NewReader creates a reader for the given device database path.
func NewReader(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("device database not found: %s", dbPath)
	}
	return &Reader{dbPath: dbPath}, nil
}

// GetDBPath returns the device database path.
func (r *Reader) GetDBPath() string {
	return r.dbPath
}

// tagIDs holds the numeric TagNames OIDs this tool operates on.
// Note is 0 when the bm.note tag is not present in the dictionary; all
// highlights are then treated as note-less.
type tagIDs struct {
	Quotation int64
	Title     int64
	Authors   int64
	Note      int64
}

// resolveTagIDs maps the required tag names to their OIDs. A missing required
// tag is fatal since the whole extraction depends on it.
func resolveTagIDs(db *sql.DB) (tagIDs, error) {
	var ids tagIDs

	required := []struct {
		name string
		dest *int64
	}{
		{TagQuotation, &ids.Quotation},
		{TagBookTitle, &ids.Title},
		{TagROAuthors, &ids.Authors},
	}

	for _, tag := range required {
		err := db.QueryRow(`SELECT OID FROM TagNames WHERE TagName = ?`, tag.name).Scan(tag.dest)
		if err == sql.ErrNoRows {
			return ids, fmt.Errorf("required tag %q not found in TagNames", tag.name)
		}
		if err != nil {
			return ids, fmt.Errorf("failed to resolve tag %q: %w", tag.name, err)
		}
	}

	err := db.QueryRow(`SELECT OID FROM TagNames WHERE TagName = ?`, TagNote).Scan(&ids.Note)
	if err != nil && err != sql.ErrNoRows {
		return ids, fmt.Errorf("failed to resolve tag %q: %w", TagNote, err)
	}

	return ids, nil
}

// getHighlightRows selects all bookmark items carrying a quotation payload.
// Plain bookmarks (the "Bookmark" sentinel payload) are excluded on the raw
// value, before any JSON parsing. Ordering by parent then time is what the
// aggregation and the rendered chronology rely on.
func getHighlightRows(db *sql.DB, quotationTagID int64) ([]HighlightRow, error) {
	query := `
		SELECT
			Items.OID,
			Items.ParentID,
			Items.TimeAlt,
			Tags.Val
		FROM Items
		JOIN Tags ON Items.OID = Tags.ItemID
		WHERE Items.TypeID = ?
		  AND Tags.TagID = ?
		  AND Tags.Val NOT LIKE '%"text":"Bookmark"%'
		ORDER BY Items.ParentID, Items.TimeAlt
	`

	rows, err := db.Query(query, highlightTypeID, quotationTagID)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	var result []HighlightRow
	for rows.Next() {
		var row HighlightRow
		var timeAlt sql.NullInt64

		if err := rows.Scan(&row.ItemID, &row.ParentID, &timeAlt, &row.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if timeAlt.Valid {
			row.TimeAlt = timeAlt.Int64
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// getBookMetadata reads the title and author tags of the parent book item.
// ro.authors is preferred over doc.authors; missing tags fall back to the
// unknown sentinels.
func getBookMetadata(db *sql.DB, parentID int64) (title, author string, err error) {
	query := `
		SELECT TagNames.TagName, Tags.Val
		FROM Tags
		JOIN TagNames ON Tags.TagID = TagNames.OID
		WHERE Tags.ItemID = ?
		  AND TagNames.TagName IN (?, ?, ?)
	`

	rows, err := db.Query(query, parentID, TagBookTitle, TagROAuthors, TagDocAuthors)
	if err != nil {
		return "", "", fmt.Errorf("failed to query book metadata: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]string)
	for rows.Next() {
		var name, val string
		if err := rows.Scan(&name, &val); err != nil {
			return "", "", fmt.Errorf("failed to scan book metadata: %w", err)
		}
		tags[name] = val
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("error iterating book metadata: %w", err)
	}

	title = tags[TagBookTitle]
	if title == "" {
		title = UnknownTitle
	}

	author = tags[TagROAuthors]
	if author == "" {
		author = tags[TagDocAuthors]
	}
	if author == "" {
		author = UnknownAuthor
	}

	return title, author, nil
}

// getNote looks up a bm.note tag attached to the same bookmark item.
// Returns the note value verbatim, or "" when there is none.
func getNote(db *sql.DB, itemID, noteTagID int64) (string, error) {
	if noteTagID == 0 {
		return "", nil
	}

	var note string
	err := db.QueryRow(`SELECT Val FROM Tags WHERE ItemID = ? AND TagID = ?`, itemID, noteTagID).Scan(&note)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query note: %w", err)
	}
	return note, nil
}

// bookMeta caches the parent item lookup so each book is queried once per run.
type bookMeta struct {
	title  string
	author string
}

// GetBooks extracts, decodes and groups all highlights from the device
// database. Books are keyed by exact title; the first-seen author wins and
// first-seen-title order is preserved. A book with no decodable highlights is
// never materialized.
func (r *Reader) GetBooks() ([]Book, error) {
	db, err := sql.Open("sqlite3", r.dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open device database: %w", err)
	}
	defer db.Close()

	ids, err := resolveTagIDs(db)
	if err != nil {
		return nil, err
	}

	rows, err := getHighlightRows(db, ids.Quotation)
	if err != nil {
		return nil, err
	}

	bookMap := make(map[string]*Book)
	bookOrder := []string{} // Preserve first-seen-title order
	metaCache := make(map[int64]bookMeta)

	for _, row := range rows {
		highlight, ok := DecodeQuotation(row)
		if !ok {
			continue
		}

		note, err := getNote(db, row.ItemID, ids.Note)
		if err != nil {
			return nil, err
		}
		highlight.Note = note

		meta, cached := metaCache[row.ParentID]
		if !cached {
			title, author, err := getBookMetadata(db, row.ParentID)
			if err != nil {
				return nil, err
			}
			meta = bookMeta{title: title, author: author}
			metaCache[row.ParentID] = meta
		}

		book, exists := bookMap[meta.title]
		if !exists {
			book = &Book{
				Title:  meta.title,
				Author: meta.author,
			}
			bookMap[meta.title] = book
			bookOrder = append(bookOrder, meta.title)
		}

		book.Highlights = append(book.Highlights, highlight)
	}

	var books []Book
	for _, title := range bookOrder {
		books = append(books, *bookMap[title])
	}

	return books, nil
}
