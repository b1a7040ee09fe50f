package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a named media file does not exist.
	ErrNotFound = errors.New("media not found")

	// ErrInvalidName is returned for names that are empty, hidden, or could
	// escape the storage root.
	ErrInvalidName = errors.New("invalid media name")
)

// BlobFile is an opened media file that supports seeking, which
// http.ServeContent needs for range requests.
type BlobFile struct {
	body    io.ReadSeekCloser
	size    int64
	modTime time.Time
	tmpPath string
}

func NewBlobFile(body io.ReadSeekCloser, size int64, modTime time.Time) *BlobFile {
	return &BlobFile{body: body, size: size, modTime: modTime}
}

func (b *BlobFile) Read(p []byte) (int, error)                { return b.body.Read(p) }
func (b *BlobFile) Seek(off int64, whence int) (int64, error) { return b.body.Seek(off, whence) }
func (b *BlobFile) Size() int64                               { return b.size }
func (b *BlobFile) ModTime() time.Time                        { return b.modTime }

// Close releases the file. Files spooled to a temp path are removed.
func (b *BlobFile) Close() error {
	err := b.body.Close()
	if b.tmpPath != "" {
		_ = os.Remove(b.tmpPath)
	}
	return err
}

// MediaInfo describes one stored media file.
type MediaInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// MediaStorage is the interface for media backends. Names are flat file
// names such as "hello-world.png"; both local-disk and S3-compatible stores
// implement it.
type MediaStorage interface {
	// Put writes r under name, replacing any existing file, and returns the
	// number of bytes stored.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)

	// Open returns ErrNotFound if name does not exist. The returned BlobFile
	// must be closed by the caller.
	Open(ctx context.Context, name string) (*BlobFile, error)

	Exists(ctx context.Context, name string) (bool, error)

	// Rename moves src to dst, replacing dst if it exists.
	Rename(ctx context.Context, src, dst string) error

	// Delete removes name. A missing file is not an error.
	Delete(ctx context.Context, name string) error

	List(ctx context.Context) ([]MediaInfo, error)
}

// ValidateName rejects names that are not a single visible path element.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
