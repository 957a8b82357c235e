package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"dreamtown/internal/domain"
)

const (
	photoDir = "photos"
	maskFile = "mask.png"
)

var photoExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// Asset is a file loaded from the assets directory with its sniffed MIME type.
type Asset struct {
	Key  string
	MIME string
	Data []byte
}

// FileStore reads the kiosk's base photos and the fixed inpainting mask from
// the local assets directory. Nothing is written at runtime.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: stat base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %s is not a directory", basePath)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Read loads the file at the given relative key.
func (s *FileStore) Read(ctx context.Context, key string) (*Asset, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(cleanKey)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", cleanKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return &Asset{Key: cleanKey, MIME: mimetype.Detect(data).String(), Data: data}, nil
}

// Photo loads a base photo by id, trying each supported extension.
func (s *FileStore) Photo(ctx context.Context, id string) (*Asset, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("storage: photo %q: %w", id, domain.ErrNotFound)
	}
	for _, ext := range photoExtensions {
		asset, err := s.Read(ctx, photoDir+"/"+id+ext)
		if err == nil {
			return asset, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("storage: photo %q: %w", id, domain.ErrNotFound)
}

// Mask loads the fixed inpainting mask.
func (s *FileStore) Mask(ctx context.Context) (*Asset, error) {
	return s.Read(ctx, maskFile)
}

// PhotoIDs lists the available base photos, sorted.
func (s *FileStore) PhotoIDs(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.basePath, photoDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("storage: list photos: %w", err)
	}
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isPhotoExtension(ext) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isPhotoExtension(ext string) bool {
	for _, e := range photoExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
