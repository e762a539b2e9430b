package images

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, maxSize int64) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	m := NewManager(UploadConfig{
		MaxSizeBytes: maxSize,
		StaticRoot:   root,
		UploadDir:    "uploads",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return m, root
}

func uploadedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "uploads"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read upload dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"anim.Gif", true},
		{"iphone.HEIC", true},
		{"photo.exe", false},
		{"photo", false},
		{"photo.png.exe", false},
	}

	for _, tt := range tests {
		if got := Allowed(tt.name); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"poster.png", "poster.png"},
		{"../../etc/poster.png", "poster.png"},
		{`C:\Users\ana\poster.png`, "poster.png"},
		{"my summer poster.jpg", "my_summer_poster.jpg"},
		{"résumé.gif", "rsum.gif"},
		{"poster.exe", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveRejectsDisallowedType(t *testing.T) {
	m, root := newTestManager(t, 0)

	_, err := m.Save(Upload{Filename: "photo.exe", Body: strings.NewReader("MZ")})
	if !errors.Is(err, ErrDisallowedType) {
		t.Fatalf("expected ErrDisallowedType, got %v", err)
	}
	if files := uploadedFiles(t, root); len(files) != 0 {
		t.Errorf("expected no files written, got %v", files)
	}
}

func TestSaveAcceptsUppercaseExtension(t *testing.T) {
	m, root := newTestManager(t, 0)

	rel, err := m.Save(Upload{Filename: "photo.JPG", Body: strings.NewReader("jpeg-bytes")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rel != "uploads/20240102_030405_photo.JPG" {
		t.Errorf("unexpected stored path %q", rel)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestSaveTooLarge(t *testing.T) {
	m, root := newTestManager(t, 4)

	_, err := m.Save(Upload{Filename: "big.png", Size: 10, Body: strings.NewReader("0123456789")})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for declared size, got %v", err)
	}

	_, err = m.Save(Upload{Filename: "big.png", Body: strings.NewReader("0123456789")})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for streamed size, got %v", err)
	}
	if files := uploadedFiles(t, root); len(files) != 0 {
		t.Errorf("expected partial file removed, got %v", files)
	}
}

func TestRemoveAndDiscard(t *testing.T) {
	m, root := newTestManager(t, 0)

	rel, err := m.Save(Upload{Filename: "poster.png", Body: strings.NewReader("png")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	m.Discard(&rel)
	if files := uploadedFiles(t, root); len(files) != 0 {
		t.Errorf("expected file discarded, got %v", files)
	}

	// already gone: logged, not fatal
	m.Discard(&rel)
	m.Discard(nil)

	if err := m.Remove(rel); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error removing missing file, got %v", err)
	}
}

func TestFullPathStaysUnderRoot(t *testing.T) {
	m, _ := newTestManager(t, 0)

	for _, rel := range []string{"../outside.png", "uploads/../../outside.png", ""} {
		if _, err := m.FullPath(rel); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("FullPath(%q): expected ErrOutsideRoot, got %v", rel, err)
		}
	}

	if _, err := m.FullPath("uploads/poster.png"); err != nil {
		t.Errorf("FullPath for upload: %v", err)
	}
}

func TestSaveSameNameSameSecondKeepsBothFiles(t *testing.T) {
	m, root := newTestManager(t, 0)

	first, err := m.Save(Upload{Filename: "poster.png", Body: strings.NewReader("first")})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := m.Save(Upload{Filename: "poster.png", Body: strings.NewReader("second")})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first == second {
		t.Fatalf("both uploads stored at %q", first)
	}
	if second != "uploads/20240102_030405_poster_1.png" {
		t.Errorf("unexpected second path %q", second)
	}

	for rel, want := range map[string]string{first: "first", second: "second"} {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("%s: expected %q, got %q", rel, want, data)
		}
	}

	m.Discard(&first)
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(second))); err != nil {
		t.Errorf("discarding one upload removed the other: %v", err)
	}
}
