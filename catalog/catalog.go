package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/draft-league/models"
)

//go:embed pokemon.json
var bundled []byte

var (
	ErrEmptyCatalog  = errors.New("catalog has no entries")
	ErrInvalidEntry  = errors.New("invalid catalog entry")
	ErrDuplicateSlug = errors.New("duplicate catalog slug")
)

type file struct {
	Data []models.CatalogEntry `json:"data"`
}

// Catalog - справочник покемонов, доступный для драфта. Безопасен для
// конкурентного чтения, Replace подменяет содержимое целиком.
type Catalog struct {
	mu      sync.RWMutex
	entries []models.CatalogEntry
	bySlug  map[string]models.CatalogEntry
}

// NewBundled loads the catalog compiled into the binary.
func NewBundled() (*Catalog, error) {
	entries, err := Parse(bundled)
	if err != nil {
		return nil, fmt.Errorf("bundled catalog: %w", err)
	}
	c := &Catalog{}
	c.Replace(entries)
	return c, nil
}

// Parse decodes and validates a catalog file of the form {"data": [...]}.
func Parse(raw []byte) ([]models.CatalogEntry, error) {
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Data) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]bool, len(f.Data))
	for i, e := range f.Data {
		e.Slug = strings.TrimSpace(e.Slug)
		if e.Slug == "" || strings.TrimSpace(e.Name) == "" || e.Pts <= 0 {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Slug, ErrInvalidEntry)
		}
		if seen[e.Slug] {
			return nil, fmt.Errorf("entry %d: %s: %w", i, e.Slug, ErrDuplicateSlug)
		}
		seen[e.Slug] = true
		f.Data[i] = e
	}
	return f.Data, nil
}

func (c *Catalog) Replace(entries []models.CatalogEntry) {
	sorted := make([]models.CatalogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	bySlug := make(map[string]models.CatalogEntry, len(sorted))
	for _, e := range sorted {
		bySlug[e.Slug] = e
	}

	c.mu.Lock()
	c.entries = sorted
	c.bySlug = bySlug
	c.mu.Unlock()
}

func (c *Catalog) Lookup(slug string) (models.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.bySlug[slug]
	return e, ok
}

// Search returns up to limit entries whose name contains q, case-insensitive.
// An empty query matches nothing.
func (c *Catalog) Search(q string, limit int) []models.CatalogEntry {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.CatalogEntry, 0)
	if q == "" {
		return out
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(e.Slug, q) {
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (c *Catalog) All() []models.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ResolveSprites turns sprite values that are bucket keys into public URLs.
func ResolveSprites(entries []models.CatalogEntry, publicURL func(key string) string) {
	for i, e := range entries {
		if e.SpriteURL == "" || strings.HasPrefix(e.SpriteURL, "http://") || strings.HasPrefix(e.SpriteURL, "https://") {
			continue
		}
		if u := publicURL(e.SpriteURL); u != "" {
			entries[i].SpriteURL = u
		}
	}
}
