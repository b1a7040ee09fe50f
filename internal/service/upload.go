package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"quill/internal/storage"
)

// FilesPrefix is the URL prefix stored in a post's file field.
const FilesPrefix = "/files/"

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
}

var allowedContentTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"image/jpeg":               true,
	"image/jpg":                true,
	"image/png":                true,
	"image/gif":                true,
	"video/mp4":                true,
	"video/x-msvideo":          true,
	"video/avi":                true,
	"video/msvideo":            true,
	"video/quicktime":          true,
	"video/x-ms-wmv":           true,
}

// validateUpload checks the declared type and size of u and returns the
// lowercased extension the stored file will carry.
func (s *Service) validateUpload(u *Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedExtensions[ext] {
		return "", uploadError("Only images (jpeg, jpg, png, gif) and videos (mp4, avi, mov, wmv) are allowed")
	}
	contentType := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !allowedContentTypes[contentType] {
		return "", uploadError("Only images (jpeg, jpg, png, gif) and videos (mp4, avi, mov, wmv) are allowed")
	}
	if u.Size > s.maxUpload {
		return "", s.tooLarge()
	}
	if u.Open == nil {
		return "", uploadError("Upload has no content")
	}
	return ext, nil
}

func (s *Service) tooLarge() error {
	return uploadError("File exceeds the %d MB upload limit", s.maxUpload>>20)
}

func uploadError(format string, args ...any) error {
	return newError(ErrInvalidUpload, format, args...)
}

// storeUpload writes u as <id><ext>. A body longer than the limit aborts the
// write and removes whatever was stored.
func (s *Service) storeUpload(ctx context.Context, id, ext string, u *Upload) (string, error) {
	name := id + ext
	body, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer body.Close()

	n, err := s.media.Put(ctx, name, io.LimitReader(body, s.maxUpload+1))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return "", newError(ErrInvalidInput, "Invalid file name")
		}
		return "", fmt.Errorf("store upload %s: %w", name, err)
	}
	if n > s.maxUpload {
		s.removeMedia(ctx, name)
		return "", s.tooLarge()
	}
	return name, nil
}

func fileURL(name string) *string {
	v := FilesPrefix + name
	return &v
}

// mediaName returns the stored file name referenced by a post's file field.
func mediaName(file *string) (string, bool) {
	if file == nil {
		return "", false
	}
	name := strings.TrimPrefix(*file, FilesPrefix)
	if name == "" || name == *file {
		return "", false
	}
	return name, true
}

// removeMedia deletes name if present. Failures are logged, not returned.
func (s *Service) removeMedia(ctx context.Context, name string) {
	ok, err := s.media.Exists(ctx, name)
	if err != nil {
		s.logger.WithError(err).WithField("file", name).Warn("check media before delete")
		return
	}
	if !ok {
		return
	}
	if err := s.media.Delete(ctx, name); err != nil {
		s.logger.WithError(err).WithField("file", name).Warn("delete media")
	}
}

// parkMedia moves name aside and returns where it went. A missing file
// yields an empty name and no error.
func (s *Service) parkMedia(ctx context.Context, name string) (string, error) {
	parked := name + ".prev"
	if err := s.media.Rename(ctx, name, parked); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("park media %s: %w", name, err)
	}
	return parked, nil
}

// restoreMedia moves a parked file back to name.
func (s *Service) restoreMedia(ctx context.Context, parked, name string) {
	if parked == "" {
		return
	}
	if err := s.media.Rename(ctx, parked, name); err != nil {
		s.logger.WithError(err).WithField("file", parked).Error("restore parked media")
	}
}
