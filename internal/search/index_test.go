package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vinylapi/internal/catalog"
)

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		{ID: "1", Album: "Nevermind", Artist: "Nirvana", Year: "1991", Status: "Lo tengo"},
		{ID: "2", Album: "Wish", Artist: "The Cure", Year: "1992", Status: "Wishlist"},
		{ID: "3", Album: "In Utero", Artist: "Nirvana", Year: "1993", Status: "Lo tengo"},
	}
}

func newTestIndex() *Index {
	idx := New(Options{})
	idx.Build(testCatalog())
	return idx
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := newTestIndex()

	assert.Empty(t, idx.Search(""))
	assert.Empty(t, idx.Search("   "))
}

func TestSearchBelowMinimumLength(t *testing.T) {
	idx := newTestIndex()

	// One character behaves exactly like an empty query.
	assert.Empty(t, idx.Search("a"))
	assert.Empty(t, idx.Search("n"))
}

func TestSearchExactMatchRanksFirst(t *testing.T) {
	idx := newTestIndex()

	results := idx.Search("Nevermind")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Nevermind", results[0].Album)

	// Exact artist match outranks fuzzier hits on the same term.
	results = idx.Search("Nirvana")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Nirvana", results[0].Artist)
}

func TestSearchToleratesTypos(t *testing.T) {
	idx := newTestIndex()

	results := idx.Search("nirvna")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Nirvana", results[0].Artist)

	results = idx.Search("nevermnd")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Nevermind", results[0].Album)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	idx := newTestIndex()

	assert.Equal(t, idx.Search("NIRVANA"), idx.Search("nirvana"))
	assert.NotEmpty(t, idx.Search("wIsH"))
}

func TestSearchSubstringAnywhere(t *testing.T) {
	idx := newTestIndex()

	// "utero" sits at the end of "In Utero".
	results := idx.Search("utero")
	assert.NotEmpty(t, results)
	assert.Equal(t, "In Utero", results[0].Album)
}

func TestSearchDisjointQueryExcluded(t *testing.T) {
	idx := newTestIndex()

	assert.Empty(t, idx.Search("zzzzqqq"))
}

func TestSearchYearAndStatusFields(t *testing.T) {
	idx := newTestIndex()

	results := idx.Search("1992")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Wish", results[0].Album)

	results = idx.Search("wishlist")
	assert.NotEmpty(t, results)
	assert.Equal(t, "Wishlist", results[0].Status)
}

func TestSearchTiesKeepCatalogOrder(t *testing.T) {
	idx := newTestIndex()

	// Both Nirvana entries match the artist exactly; catalog order decides.
	results := idx.Search("Nirvana")
	var nirvana []string
	for _, e := range results {
		if e.Artist == "Nirvana" {
			nirvana = append(nirvana, e.ID)
		}
	}
	assert.Equal(t, []string{"1", "3"}, nirvana)
}

func TestBuildReplacesContents(t *testing.T) {
	idx := newTestIndex()
	assert.NotEmpty(t, idx.Search("Nevermind"))

	idx.Build([]catalog.Entry{{ID: "9", Album: "Disintegration", Artist: "The Cure"}})
	assert.Empty(t, idx.Search("Nevermind"))
	assert.NotEmpty(t, idx.Search("Disintegration"))
}

func TestSearchOnEmptyIndex(t *testing.T) {
	idx := New(Options{})

	assert.Empty(t, idx.Search("anything"))
}
