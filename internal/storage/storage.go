// Package storage persists uploaded image blobs on the local filesystem and
// hands out public URLs for them. Object keys are random, so a re-uploaded
// cover never collides with the blob it replaces.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tinykiri/readiculous/internal/media/images"
)

// Bucket names group blobs by purpose.
const (
	BucketCovers  = "covers"
	BucketAvatars = "avatars"
)

// Storage manages image blobs under a base directory.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath      string
	publicBaseURL string
	mu            sync.RWMutex
}

// New creates a Storage rooted at basePath. Blobs live in
// {basePath}/{bucket}/{key} and are served at {publicBaseURL}/{bucket}/{key}.
func New(basePath, publicBaseURL string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	for _, bucket := range []string{BucketCovers, BucketAvatars} {
		if err := os.MkdirAll(filepath.Join(basePath, bucket), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", bucket, err)
		}
	}

	return &Storage{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Save stores an image blob in a bucket under a fresh random key and
// returns its public URL. The key's extension follows the content type.
func (s *Storage) Save(bucket string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	ext := images.Extension(contentType)
	if ext == "" {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	key := uuid.NewString() + "." + ext

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, bucket, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.publicBaseURL + "/" + bucket + "/" + key, nil
}

// DeleteByURL removes the blob a public URL points at. URLs from other
// hosts and already-deleted blobs are ignored, so callers can treat old
// blob cleanup as best-effort.
func (s *Storage) DeleteByURL(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.publicBaseURL+"/")
	if !ok {
		return nil
	}

	bucket, key, ok := strings.Cut(rel, "/")
	if !ok || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return nil
	}
	if bucket != BucketCovers && bucket != BucketAvatars {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.basePath, bucket, key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Dir returns the filesystem directory backing a bucket, for mounting a
// static file route.
func (s *Storage) Dir(bucket string) string {
	return filepath.Join(s.basePath, bucket)
}
