package service

import (
	"context"
	"io"
	"sync"

	"quill/internal/storage"
	"quill/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultMaxUploadBytes int64 = 50 << 20

// Upload is a media file attached to a create or update request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64 // declared size; negative when unknown
	Open        func() (io.ReadCloser, error)
}

type CreateInput struct {
	Title   string
	Content string
	Upload  *Upload
}

// UpdateInput fields are optional. Blank Title or Content leave the current
// value untouched.
type UpdateInput struct {
	Title   string
	Content string
	Upload  *Upload
}

type Options struct {
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// Service owns the post collection. Every read-modify-write cycle runs under
// mu, so concurrent writers never lose each other's updates.
type Service struct {
	store     store.Store
	media     storage.MediaStorage
	logger    logrus.FieldLogger
	maxUpload int64

	mu        sync.Mutex
	loadGroup singleflight.Group
}

func New(st store.Store, media storage.MediaStorage, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Service{
		store:     st,
		media:     media,
		logger:    logger.WithField("component", "service"),
		maxUpload: maxUpload,
	}
}

func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// Media exposes the media store for serving files.
func (s *Service) Media() storage.MediaStorage {
	return s.media
}

// snapshot loads the collection for readers. Concurrent callers share one
// in-flight Load; the returned slice must not be modified.
func (s *Service) snapshot(ctx context.Context) ([]store.Post, error) {
	// The load is shared, so one caller going away must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loadGroup.Do("posts", func() (any, error) {
		return s.store.Load(loadCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.Post), nil
}
