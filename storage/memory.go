package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// memoryUploader держит объекты в памяти; используется, когда R2 не настроен.
type memoryUploader struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	publicBaseURL string
}

func NewMemoryUploader(publicBaseURL string) FileUploader {
	return &memoryUploader{objects: make(map[string][]byte), publicBaseURL: publicBaseURL}
}

func (u *memoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.objects[key] = buf.Bytes()
	u.mu.Unlock()
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Download(ctx context.Context, key string) ([]byte, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	body, ok := u.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), body...), nil
}

func (u *memoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	delete(u.objects, key)
	u.mu.Unlock()
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return publicURL(u.publicBaseURL, key)
}
