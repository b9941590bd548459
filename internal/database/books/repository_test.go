package books

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pocketbook-sync/internal/database"
	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

func setupDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func sampleBook() *entities.Book {
	return &entities.Book{
		Title:  "Solaris",
		Author: "Stanisław Lem",
		Source: entities.Source{Name: "pocketbook"},
		Highlights: []entities.Highlight{
			{
				Text:          "First quote",
				LocationType:  entities.LocationTypePage,
				LocationValue: 5,
				HighlightedAt: time.Unix(1700000000, 0),
			},
			{
				Text:          "Second quote",
				Note:          "my note",
				LocationType:  entities.LocationTypeCFI,
				CFI:           "epubcfi(/6/2!/4)",
				HighlightedAt: time.Unix(1700000100, 0),
			},
		},
	}
}

func TestRepository_SaveBook(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db.DB)

	book := sampleBook()
	require.NoError(t, repo.SaveBook(book, db.GetSourceByName))
	assert.NotZero(t, book.ID)

	saved, err := repo.GetBookByTitleAndAuthor("Solaris", "Stanisław Lem")
	require.NoError(t, err)
	assert.Equal(t, "Solaris", saved.Title)
	require.Len(t, saved.Highlights, 2)

	texts := []string{saved.Highlights[0].Text, saved.Highlights[1].Text}
	assert.ElementsMatch(t, []string{"First quote", "Second quote"}, texts)
	assert.Equal(t, "pocketbook", saved.Source.Name)
}

func TestRepository_SaveBookIsIdempotent(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db.DB)

	require.NoError(t, repo.SaveBook(sampleBook(), db.GetSourceByName))
	require.NoError(t, repo.SaveBook(sampleBook(), db.GetSourceByName))

	saved, err := repo.GetBookByTitleAndAuthor("Solaris", "Stanisław Lem")
	require.NoError(t, err)
	assert.Len(t, saved.Highlights, 2)

	all, err := repo.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_SaveBookAppendsNewHighlights(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db.DB)

	require.NoError(t, repo.SaveBook(sampleBook(), db.GetSourceByName))

	updated := sampleBook()
	updated.Highlights = append(updated.Highlights, entities.Highlight{
		Text:          "Third quote",
		LocationType:  entities.LocationTypePage,
		LocationValue: 9,
		HighlightedAt: time.Unix(1700000200, 0),
	})
	require.NoError(t, repo.SaveBook(updated, db.GetSourceByName))

	saved, err := repo.GetBookByTitleAndAuthor("Solaris", "Stanisław Lem")
	require.NoError(t, err)
	assert.Len(t, saved.Highlights, 3)
}
