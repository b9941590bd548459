package pocketbook

import (
	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

// ConvertToEntities converts extracted books to entities.Book slice for
// storage in the local library database.
func ConvertToEntities(books []Book) []entities.Book {
	result := make([]entities.Book, 0, len(books))

	for _, book := range books {
		if len(book.Highlights) == 0 {
			continue
		}

		entity := entities.Book{
			Title:  book.Title,
			Author: book.Author,
			Source: entities.Source{Name: "pocketbook"},
		}

		highlights := make([]entities.Highlight, 0, len(book.Highlights))
		for _, h := range book.Highlights {
			highlights = append(highlights, ConvertHighlight(h))
		}

		entity.Highlights = highlights
		result = append(result, entity)
	}

	return result
}

// ConvertHighlight converts a single decoded highlight to entities.Highlight
func ConvertHighlight(h Highlight) entities.Highlight {
	highlight := entities.Highlight{
		Text:   h.Text,
		Note:   h.Note,
		CFI:    h.EpubCFI,
		Source: entities.Source{Name: "pocketbook"},
	}

	switch {
	case h.Page > 0:
		highlight.LocationType = entities.LocationTypePage
		highlight.LocationValue = h.Page
	case h.EpubCFI != "":
		highlight.LocationType = entities.LocationTypeCFI
	default:
		highlight.LocationType = entities.LocationTypeNone
	}

	if h.Timestamp != 0 {
		highlight.HighlightedAt = h.GetTime()
	}

	return highlight
}
