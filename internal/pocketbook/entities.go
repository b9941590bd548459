package pocketbook

import (
	"time"
)

// Tag names used by the PocketBook entity-tag store. The device keeps all
// bookmark and document metadata as generic key/value rows; these are the
// only keys this tool recognizes.
const (
	TagQuotation  = "bm.quotation"
	TagNote       = "bm.note"
	TagBookTitle  = "doc.book-title"
	TagROAuthors  = "ro.authors"
	TagDocAuthors = "doc.authors"
)

// highlightTypeID is the Items.TypeID discriminator for bookmark items.
const highlightTypeID = 4

// Sentinel values used when the device database carries no metadata for a book.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// HighlightRow is a raw candidate row from the device database: one bookmark
// item joined with its quotation tag payload.
type HighlightRow struct {
	ItemID   int64  // Items.OID
	ParentID int64  // Items.ParentID (the containing book item)
	TimeAlt  int64  // Items.TimeAlt, seconds since epoch
	Payload  string // Tags.Val, a serialized JSON object
}

// Highlight is one decoded quotation with its optional note and position.
type Highlight struct {
	Text      string // highlighted text, always non-empty and trimmed
	Note      string // user annotation, empty when absent
	Page      int    // page number from the begin locator, 0 when absent
	EpubCFI   string // EPUB canonical fragment identifier, empty when absent
	Timestamp int64  // seconds since epoch, 0 when absent
}

// GetTime converts the epoch timestamp to a time.Time
func (h *Highlight) GetTime() time.Time {
	return time.Unix(h.Timestamp, 0)
}

// Book groups the highlights sharing one title, in database retrieval order.
type Book struct {
	Title      string
	Author     string
	Highlights []Highlight
}
