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

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/models"
)

// link is swapped in tests to simulate filesystems without hard links.
var link = os.Link

// FS implements Provider backed by a single local directory. Identifiers are
// file names relative to that directory.
type FS struct {
	root string // absolute path to the posts directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory. The
// directory may not exist yet; it is created on the first write.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("storage: stat root: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute posts directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes content dir: %s", rel)
	}
	return abs, nil
}

// Path returns the absolute path for the post identified by id.
func (f *FS) Path(id string) (string, error) {
	return f.safePath(id)
}

// List returns every .md file directly inside the root, sorted by name. A
// missing root yields an empty list.
func (f *FS) List(_ context.Context) ([]models.PostRef, error) {
	entries, err := os.ReadDir(f.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.PostRef
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		out = append(out, models.PostRef{Name: e.Name(), ID: e.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read returns the raw bytes of a post.
func (f *FS) Read(_ context.Context, id string) ([]byte, error) {
	abs, err := f.safePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return data, nil
}

// Create writes content to a new file: tmp file → fsync → hard link into
// place. The link fails when the destination exists, so an existing post is
// never replaced. Filesystems without hard links fall back to an exclusive
// create. message is unused locally; commits happen at publish time.
func (f *FS) Create(_ context.Context, id string, content []byte, _ string) error {
	abs, err := f.safePath(id)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if _, err := os.Lstat(abs); err == nil {
		return fmt.Errorf("storage: create %s: %w", id, apperr.ErrConflict)
	}

	tmp, err := os.CreateTemp(dir, ".blog-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	err = link(tmpName, abs)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		err = writeExclusive(abs, content)
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("storage: create %s: %w", id, apperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", id, err)
	}
	return nil
}

// writeExclusive creates abs with O_EXCL and writes content to it. A partial
// file is removed on failure.
func writeExclusive(abs string, content []byte) error {
	out, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = out.Write(content)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs)
	}
	return err
}

// Locate returns name unchanged: local identifiers are file names.
func (f *FS) Locate(name string) string {
	return name
}
