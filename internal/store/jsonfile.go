package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// JSONFile keeps the collection as one indented JSON array in a single file.
type JSONFile struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger
}

var _ Store = (*JSONFile)(nil)

// NewJSONFile returns a JSON store at path on fs. A nil fs means the host
// filesystem. The parent directory is created if missing; the file itself is
// created on the first Save.
func NewJSONFile(fs afero.Fs, path string, logger logrus.FieldLogger) (*JSONFile, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = discardLogger()
	}
	if path == "" {
		return nil, fmt.Errorf("json store: path required")
	}
	dir := filepath.Dir(path)
	if ok, _ := afero.DirExists(fs, dir); !ok {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &JSONFile{fs: fs, path: path, logger: logger}, nil
}

// Load reads the store file. A missing, empty or unparsable file yields an
// empty collection; parse errors are logged, not returned.
func (s *JSONFile) Load(_ context.Context) ([]Post, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Post{}, nil
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Error("store file is not a post array, treating it as empty")
		return []Post{}, nil
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// Save writes posts to a temp file next to the store file and renames it into
// place.
func (s *JSONFile) Save(_ context.Context, posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONFile) Close() error { return nil }
