// Package books provides database operations for the local highlights library.
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

// Repository handles book and highlight persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByTitleAndAuthor retrieves a book by title and author.
func (r *Repository) GetBookByTitleAndAuthor(title, author string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("location_value ASC, highlighted_at ASC")
	}).Preload("Source").Where("title = ? AND author = ?", title, author).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves all books with their highlights.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Highlights", func(db *gorm.DB) *gorm.DB {
		return db.Order("location_value ASC, highlighted_at ASC")
	}).Preload("Source").Find(&books).Error
	return books, err
}

// SaveBook upserts a book and its highlights, deduplicating highlights by
// text + location + timestamp. Re-running an import with unchanged device
// state is a no-op.
func (r *Repository) SaveBook(book *entities.Book, getSourceByName func(string) (*entities.Source, error)) error {
	// Resolve the source reference when only the name was set
	if book.SourceID == 0 && book.Source.Name != "" {
		source, err := getSourceByName(book.Source.Name)
		if err != nil {
			return fmt.Errorf("failed to resolve source %q: %w", book.Source.Name, err)
		}
		book.SourceID = source.ID
		for i := range book.Highlights {
			book.Highlights[i].SourceID = source.ID
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Where("title = ? AND author = ? AND source_id = ?",
			book.Title, book.Author, book.SourceID).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			incoming := book.Highlights
			book.Highlights = nil
			if err := tx.Omit("Source", "Highlights.Source").Create(book).Error; err != nil {
				return fmt.Errorf("failed to create book: %w", err)
			}
			for i := range incoming {
				incoming[i].BookID = book.ID
			}
			if len(incoming) > 0 {
				if err := tx.Omit("Source", "Book").Create(&incoming).Error; err != nil {
					return fmt.Errorf("failed to create highlights: %w", err)
				}
			}
			book.Highlights = incoming
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up book: %w", err)
		}

		// Book exists: append only highlights we have not seen before
		for i := range book.Highlights {
			h := &book.Highlights[i]

			var count int64
			err := tx.Model(&entities.Highlight{}).
				Where("book_id = ? AND text = ? AND location_value = ? AND highlighted_at = ?",
					existing.ID, h.Text, h.LocationValue, h.HighlightedAt).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("failed to check for duplicate highlight: %w", err)
			}
			if count > 0 {
				continue
			}

			h.BookID = existing.ID
			if err := tx.Omit("Source", "Book").Create(h).Error; err != nil {
				return fmt.Errorf("failed to create highlight: %w", err)
			}
		}

		book.ID = existing.ID
		return nil
	})
}
