// Package app builds the runtime dependencies shared by the server and
// quillctl from a config.Config.
package app

import (
	"context"
	"fmt"
	"os"

	"quill/internal/config"
	"quill/internal/service"
	"quill/internal/storage"
	"quill/internal/store"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger writing to stderr with the configured
// level and format.
func NewLogger(cfg config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}
	return logger, nil
}

func OpenStore(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (store.Store, error) {
	return store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		Path:        cfg.StorePath,
		DatabaseURL: cfg.DatabaseURL,
		Logger:      logger,
	})
}

func OpenMedia(ctx context.Context, cfg config.Config) (storage.MediaStorage, error) {
	switch cfg.MediaDriver {
	case config.MediaDriverS3:
		client, err := storage.NewS3Client(ctx, storage.S3ClientOptions{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3MediaStore(storage.S3Options{
			Client: client,
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
		}), nil
	case "", config.MediaDriverLocal:
		return storage.NewLocalMediaStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.MediaDriver)
	}
}

// Runtime is an opened post store, media store and the service over them.
type Runtime struct {
	Store   store.Store
	Media   storage.MediaStorage
	Service *service.Service
}

func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Runtime, error) {
	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	media, err := OpenMedia(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open %s media store: %w", cfg.MediaDriver, err)
	}
	svc := service.New(st, media, service.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	return &Runtime{Store: st, Media: media, Service: svc}, nil
}

func (r *Runtime) Close() error {
	return r.Store.Close()
}
