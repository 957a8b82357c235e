package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dreamtown/internal/domain"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "photos"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"photos/plaza.png":   pngHeader,
		"photos/station.jpg": {0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0},
		"photos/notes.txt":   []byte("ignored"),
		"mask.png":           pngHeader,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return store
}

func TestFileStorePhoto(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	plaza, err := store.Photo(ctx, "plaza")
	if err != nil {
		t.Fatalf("Photo(plaza) returned error: %v", err)
	}
	if plaza.MIME != "image/png" {
		t.Fatalf("plaza MIME = %q", plaza.MIME)
	}
	station, err := store.Photo(ctx, "station")
	if err != nil {
		t.Fatalf("Photo(station) returned error: %v", err)
	}
	if station.MIME != "image/jpeg" {
		t.Fatalf("station MIME = %q", station.MIME)
	}
	if _, err := store.Photo(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing photo err = %v", err)
	}
	if _, err := store.Photo(ctx, "../mask"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("traversal err = %v", err)
	}
}

func TestFileStoreMaskAndList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	mask, err := store.Mask(ctx)
	if err != nil || len(mask.Data) == 0 {
		t.Fatalf("Mask() = %v, %v", mask, err)
	}
	ids, err := store.PhotoIDs(ctx)
	if err != nil {
		t.Fatalf("PhotoIDs returned error: %v", err)
	}
	if want := []string{"plaza", "station"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("PhotoIDs = %v, want %v", ids, want)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"photos/a.png":   "photos/a.png",
		"/photos/a.png":  "photos/a.png",
		`photos\a.png`:   "photos/a.png",
		"./mask.png":    "mask.png",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		if err != nil || got != want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "..", "../etc/passwd", "photos/../../x"} {
		if _, err := sanitizeKey(bad); err == nil {
			t.Fatalf("sanitizeKey(%q) should fail", bad)
		}
	}
}
