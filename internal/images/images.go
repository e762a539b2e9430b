// Package images stores event images on disk and keeps the stored files in
// step with the image_path column.
package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrDisallowedType is returned for uploads whose extension is not an
	// allowed image type. Callers treat it as "no image supplied".
	ErrDisallowedType = errors.New("file type not allowed")

	ErrTooLarge = errors.New("file exceeds maximum upload size")

	ErrOutsideRoot = errors.New("path escapes static root")
)

var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "heic"}

const timestampLayout = "20060102_150405"

type UploadConfig struct {
	MaxSizeBytes int64
	StaticRoot   string
	UploadDir    string
}

type Manager struct {
	config UploadConfig
	log    *slog.Logger
	now    func() time.Time
}

func NewManager(config UploadConfig, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		config: config,
		log:    log.With("component", "images"),
		now:    time.Now,
	}
}

// Allowed reports whether filename carries an allowed image extension,
// ignoring case.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	ext = strings.ToLower(ext)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces an untrusted upload name to a safe base name:
// directory parts are dropped, whitespace becomes underscores and anything
// outside [A-Za-z0-9_.-] is removed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" || !Allowed(name) {
		return ""
	}
	return name
}

// Upload is a candidate image as received from a form.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Save writes the upload under the upload directory and returns its path
// relative to the static root. The stored name is the sanitized original
// prefixed with a seconds-resolution timestamp; a same-named upload within
// the same second gets a numeric suffix instead of replacing the first file.
func (m *Manager) Save(upload Upload) (string, error) {
	if !Allowed(upload.Filename) {
		m.log.Info("upload ignored, extension not allowed", "filename", upload.Filename)
		return "", ErrDisallowedType
	}
	if m.config.MaxSizeBytes > 0 && upload.Size > m.config.MaxSizeBytes {
		return "", fmt.Errorf("%w: limit is %d MB", ErrTooLarge, m.config.MaxSizeBytes/(1024*1024))
	}

	safe := SanitizeFilename(upload.Filename)
	if safe == "" {
		safe = "image" + strings.ToLower(filepath.Ext(upload.Filename))
	}
	stored := m.now().Format(timestampLayout) + "_" + safe

	dir := filepath.Join(m.config.StaticRoot, m.config.UploadDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, stored, err := createExclusive(dir, stored)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	full := filepath.Join(dir, stored)

	reader := upload.Body
	if m.config.MaxSizeBytes > 0 {
		reader = io.LimitReader(upload.Body, m.config.MaxSizeBytes+1)
	}
	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil && m.config.MaxSizeBytes > 0 && written > m.config.MaxSizeBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}

	rel := path.Join(filepath.ToSlash(m.config.UploadDir), stored)
	m.log.Info("image saved", "path", rel, "bytes", written)
	return rel, nil
}

const maxNameAttempts = 100

// createExclusive creates dir/name without touching an existing file,
// trying name_1.ext, name_2.ext and so on when it is taken.
func createExclusive(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	return nil, "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameAttempts)
}

// FullPath resolves an image_path value to its location on disk.
func (m *Manager) FullPath(rel string) (string, error) {
	root, err := filepath.Abs(m.config.StaticRoot)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full == root || !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

func (m *Manager) Remove(rel string) error {
	full, err := m.FullPath(rel)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Discard removes a stored image and only logs on failure; a missing or
// undeletable file never fails the caller.
func (m *Manager) Discard(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	if err := m.Remove(*rel); err != nil {
		m.log.Warn("could not delete image", "path", *rel, "error", err)
		return
	}
	m.log.Info("image deleted", "path", *rel)
}
