package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const localTmpDir = ".tmp"

// LocalMediaStore stores media files flat under a root directory.
type LocalMediaStore struct {
	fs   afero.Fs
	root string
}

var _ MediaStorage = (*LocalMediaStore)(nil)

type LocalOption func(*LocalMediaStore)

// WithFs swaps the host filesystem for fs, e.g. afero.NewMemMapFs in tests.
func WithFs(fs afero.Fs) LocalOption {
	return func(l *LocalMediaStore) {
		l.fs = fs
	}
}

func NewLocalMediaStore(root string, opts ...LocalOption) (*LocalMediaStore, error) {
	l := &LocalMediaStore{fs: afero.NewOsFs(), root: root}
	for _, apply := range opts {
		apply(l)
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root required")
	}
	if err := l.fs.MkdirAll(filepath.Join(root, localTmpDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return l, nil
}

func (l *LocalMediaStore) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(l.root, name), nil
}

// Put streams r into a temp file under the root and renames it into place, so
// a failed copy never leaves a truncated file behind.
func (l *LocalMediaStore) Put(_ context.Context, name string, r io.Reader) (size int64, err error) {
	dest, err := l.path(name)
	if err != nil {
		return 0, err
	}

	tmpFile, err := afero.TempFile(l.fs, filepath.Join(l.root, localTmpDir), "upload-*")
	if err != nil {
		return 0, fmt.Errorf("create tmp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		if err != nil {
			_ = l.fs.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		return 0, fmt.Errorf("write media: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("close tmp file: %w", err)
	}
	if err := l.fs.Rename(tmpName, dest); err != nil {
		return 0, fmt.Errorf("move media: %w", err)
	}
	return n, nil
}

func (l *LocalMediaStore) Open(_ context.Context, name string) (*BlobFile, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	f, err := l.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return NewBlobFile(f, info.Size(), info.ModTime()), nil
}

func (l *LocalMediaStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := l.path(name)
	if err != nil {
		return false, err
	}
	return afero.Exists(l.fs, p)
}

func (l *LocalMediaStore) Rename(_ context.Context, src, dst string) error {
	from, err := l.path(src)
	if err != nil {
		return err
	}
	to, err := l.path(dst)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if ok, err := afero.Exists(l.fs, from); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%s: %w", src, ErrNotFound)
	}
	if err := l.fs.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", src, dst, err)
	}
	return nil
}

func (l *LocalMediaStore) Delete(_ context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := l.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the regular files under the root sorted by name. Hidden
// entries, including the temp directory, are skipped.
func (l *LocalMediaStore) List(_ context.Context) ([]MediaInfo, error) {
	entries, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		return nil, err
	}
	out := make([]MediaInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, MediaInfo{Name: e.Name(), Size: e.Size(), ModTime: e.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
