package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/storage"
	"github.com/robfig/cron/v3"
)

const catalogSearchLimit = 20

type CatalogService interface {
	Search(query string, limit int) []models.CatalogEntry
	Lookup(slug string) (models.CatalogEntry, bool)
	All() []models.CatalogEntry
	Reload(ctx context.Context) error
	Upload(ctx context.Context, raw []byte) (int, error)
	ScheduleRefresh(c *cron.Cron, spec string) (cron.EntryID, error)
}

type catalogService struct {
	catalog   *catalog.Catalog
	uploader  storage.FileUploader
	objectKey string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCatalogService wraps the bundled catalog. With an uploader and an object
// key the catalog can be reloaded from and uploaded to the bucket.
func NewCatalogService(cat *catalog.Catalog, uploader storage.FileUploader, objectKey string, m *metrics.Metrics, logger *slog.Logger) CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &catalogService{catalog: cat, uploader: uploader, objectKey: objectKey, metrics: m, logger: logger}
	s.setSize()
	return s
}

func (s *catalogService) Search(query string, limit int) []models.CatalogEntry {
	if limit <= 0 || limit > catalogSearchLimit {
		limit = catalogSearchLimit
	}
	return s.catalog.Search(query, limit)
}

func (s *catalogService) Lookup(slug string) (models.CatalogEntry, bool) {
	return s.catalog.Lookup(slug)
}

func (s *catalogService) All() []models.CatalogEntry {
	return s.catalog.All()
}

func (s *catalogService) enabled() bool {
	return s.uploader != nil && s.objectKey != ""
}

// Reload заменяет каталог файлом из бакета. Отсутствие объекта не ошибка:
// остаётся встроенный каталог.
func (s *catalogService) Reload(ctx context.Context) error {
	if !s.enabled() {
		return ErrCatalogUnavailable
	}
	raw, err := s.uploader.Download(ctx, s.objectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.observe("bucket", "missing")
		s.logger.InfoContext(ctx, "catalog object not found, keeping current catalog", "key", s.objectKey)
		return nil
	}
	if err != nil {
		s.observe("bucket", "error")
		return fmt.Errorf("failed to download catalog: %w", err)
	}
	n, err := s.apply(raw)
	if err != nil {
		s.observe("bucket", "invalid")
		return err
	}
	s.observe("bucket", "ok")
	s.logger.InfoContext(ctx, "catalog reloaded", "entries", n, "key", s.objectKey)
	return nil
}

// Upload validates a new catalog file, stores it in the bucket and activates it.
func (s *catalogService) Upload(ctx context.Context, raw []byte) (int, error) {
	if !s.enabled() {
		return 0, ErrCatalogUnavailable
	}
	entries, err := catalog.Parse(raw)
	if err != nil {
		s.observe("upload", "invalid")
		return 0, invalid(err)
	}
	if _, err := s.uploader.Upload(ctx, s.objectKey, "application/json", bytes.NewReader(raw)); err != nil {
		s.observe("upload", "error")
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}
	s.activate(entries)
	s.observe("upload", "ok")
	s.logger.InfoContext(ctx, "catalog uploaded", "entries", len(entries))
	return len(entries), nil
}

func (s *catalogService) ScheduleRefresh(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Reload(ctx); err != nil {
			s.logger.Error("scheduled catalog refresh failed", "error", err)
		}
	})
}

func (s *catalogService) apply(raw []byte) (int, error) {
	entries, err := catalog.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid catalog in bucket: %w", err)
	}
	s.activate(entries)
	return len(entries), nil
}

func (s *catalogService) activate(entries []models.CatalogEntry) {
	catalog.ResolveSprites(entries, s.uploader.GetPublicURL)
	s.catalog.Replace(entries)
	s.setSize()
}

func (s *catalogService) observe(source, outcome string) {
	if s.metrics != nil {
		s.metrics.CatalogReloads.WithLabelValues(source, outcome).Inc()
	}
}

func (s *catalogService) setSize() {
	if s.metrics != nil {
		s.metrics.CatalogSize.Set(float64(s.catalog.Len()))
	}
}
