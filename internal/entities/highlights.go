package entities

import (
	"time"
)

type LocationType string

const (
	LocationTypePage LocationType = "page"
	LocationTypeCFI  LocationType = "cfi" // EPUB Canonical Fragment Identifier
	LocationTypeNone LocationType = "none"
)

type Source struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50" json:"name"` // e.g., "pocketbook"
	DisplayName string    `gorm:"size:100" json:"display_name"`    // e.g., "PocketBook"
	CreatedAt   time.Time `json:"created_at"`
}

type Book struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Title      string      `gorm:"index;size:512" json:"title"`
	Author     string      `gorm:"index;size:256" json:"author"`
	CalibreID  int64       `gorm:"index" json:"calibre_id,omitempty"`
	FilePath   string      `gorm:"size:1024" json:"file_path,omitempty"`
	SourceID   uint        `gorm:"index" json:"source_id"`
	Source     Source      `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Highlights []Highlight `gorm:"foreignKey:BookID" json:"highlights,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type Highlight struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	BookID uint   `gorm:"index" json:"book_id"`
	Text   string `gorm:"type:text" json:"text"`
	Note   string `gorm:"type:text" json:"note,omitempty"`

	// Location information
	LocationType  LocationType `gorm:"size:20;default:'page'" json:"location_type"`
	LocationValue int          `json:"location_value,omitempty"`
	CFI           string       `gorm:"size:512" json:"cfi,omitempty"`

	// Metadata
	HighlightedAt time.Time `json:"highlighted_at,omitempty"` // When user made the highlight
	SourceID      uint      `gorm:"index" json:"source_id"`
	Source        Source    `gorm:"foreignKey:SourceID" json:"source,omitempty"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Source) TableName() string {
	return "sources"
}

func (Book) TableName() string {
	return "books"
}

func (Highlight) TableName() string {
	return "highlights"
}
