package catalog

import (
	"sync"
	"testing"

	"github.com/Dosada05/draft-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBundled(t *testing.T) {
	c, err := NewBundled()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 30)

	pika, ok := c.Lookup("pikachu")
	require.True(t, ok)
	assert.Equal(t, "Pikachu", pika.Name)
	assert.Positive(t, pika.Pts)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", `{"data": []}`, ErrEmptyCatalog},
		{"no slug", `{"data": [{"name": "X", "pts": 1}]}`, ErrInvalidEntry},
		{"zero pts", `{"data": [{"name": "X", "github_name": "x"}]}`, ErrInvalidEntry},
		{"duplicate", `{"data": [{"name": "X", "github_name": "x", "pts": 1}, {"name": "Y", "github_name": "x", "pts": 2}]}`, ErrDuplicateSlug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	c := &Catalog{}
	c.Replace([]models.CatalogEntry{
		{Slug: "pikachu", Name: "Pikachu", Pts: 8},
		{Slug: "raichu", Name: "Raichu", Pts: 10},
		{Slug: "mr-mime", Name: "Mr. Mime", Pts: 7},
	})

	assert.Empty(t, c.Search("", 5))
	got := c.Search("CHU", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Pikachu", got[0].Name)
	assert.Len(t, c.Search("chu", 1), 1)
	assert.Len(t, c.Search("mr-", 5), 1)
}

func TestReplaceConcurrentWithReads(t *testing.T) {
	c, err := NewBundled()
	require.NoError(t, err)
	all := c.All()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Replace(all)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Lookup("pikachu")
			_ = c.Search("a", 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, len(all), c.Len())
}

func TestResolveSprites(t *testing.T) {
	entries := []models.CatalogEntry{
		{Slug: "a", SpriteURL: "https://example.com/a.png"},
		{Slug: "b", SpriteURL: "sprites/b.png"},
		{Slug: "c"},
	}
	ResolveSprites(entries, func(key string) string { return "https://cdn.test/" + key })

	assert.Equal(t, "https://example.com/a.png", entries[0].SpriteURL)
	assert.Equal(t, "https://cdn.test/sprites/b.png", entries[1].SpriteURL)
	assert.Empty(t, entries[2].SpriteURL)
}
