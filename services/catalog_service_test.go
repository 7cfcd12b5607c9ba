package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadedCatalog = `{"data":[
	{"github_name":"pikachu","name":"Pikachu","pts":10,"spriteUrl":"sprites/pikachu.png"},
	{"github_name":"mew","name":"Mew","pts":70,"spriteUrl":"https://img.example/mew.png"}
]}`

func newCatalogService(t *testing.T, uploader storage.FileUploader, key string) (CatalogService, *catalog.Catalog, *metrics.Metrics) {
	t.Helper()
	cat, err := catalog.NewBundled()
	require.NoError(t, err)
	m := metrics.New()
	svc := NewCatalogService(cat, uploader, key, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, cat, m
}

func TestCatalogService_Search(t *testing.T) {
	svc, cat, m := newCatalogService(t, nil, "")

	found := svc.Search("pika", 0)
	require.NotEmpty(t, found)
	assert.Equal(t, "pikachu", found[0].Slug)
	assert.Empty(t, svc.Search("", 5))
	assert.LessOrEqual(t, len(svc.Search("a", 100)), catalogSearchLimit)
	assert.Equal(t, float64(cat.Len()), testutil.ToFloat64(m.CatalogSize))

	_, ok := svc.Lookup("pikachu")
	assert.True(t, ok)
	assert.Len(t, svc.All(), cat.Len())
}

func TestCatalogService_NoBucket(t *testing.T) {
	svc, _, _ := newCatalogService(t, nil, "")

	assert.ErrorIs(t, svc.Reload(context.Background()), ErrCatalogUnavailable)
	_, err := svc.Upload(context.Background(), []byte(uploadedCatalog))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestCatalogService_UploadAndReload(t *testing.T) {
	ctx := context.Background()
	uploader := storage.NewMemoryUploader("https://cdn.example")
	svc, cat, m := newCatalogService(t, uploader, "catalog/pokemon.json")
	bundledSize := cat.Len()

	// missing object keeps the bundled catalog
	require.NoError(t, svc.Reload(ctx))
	assert.Equal(t, bundledSize, cat.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogReloads.WithLabelValues("bucket", "missing")))

	_, err := svc.Upload(ctx, []byte(`{"data":[]}`))
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, catalog.ErrEmptyCatalog)

	n, err := svc.Upload(ctx, []byte(uploadedCatalog))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, cat.Len())

	pika, ok := svc.Lookup("pikachu")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/sprites/pikachu.png", pika.SpriteURL)
	mew, _ := svc.Lookup("mew")
	assert.Equal(t, "https://img.example/mew.png", mew.SpriteURL)

	fresh, freshCat, _ := newCatalogService(t, uploader, "catalog/pokemon.json")
	require.NoError(t, fresh.Reload(ctx))
	assert.Equal(t, 2, freshCat.Len())
}

func TestCatalogService_ScheduleRefresh(t *testing.T) {
	uploader := storage.NewMemoryUploader("https://cdn.example")
	_, err := uploader.Upload(context.Background(), "catalog.json", "application/json", strings.NewReader(uploadedCatalog))
	require.NoError(t, err)
	svc, cat, _ := newCatalogService(t, uploader, "catalog.json")

	c := cron.New(cron.WithSeconds())
	_, err = svc.ScheduleRefresh(c, "@every 1s")
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	assert.Eventually(t, func() bool { return cat.Len() == 2 }, 5*time.Second, 50*time.Millisecond)

	_, err = svc.ScheduleRefresh(c, "not a schedule")
	assert.Error(t, err)
}
