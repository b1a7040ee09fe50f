package app

import (
	"context"
	"path/filepath"
	"testing"

	"quill/internal/config"
	"quill/internal/service"
	"quill/internal/storage"
	"quill/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = NewLogger(config.Config{LogLevel: "loud"})
	require.Error(t, err)
	_, err = NewLogger(config.Config{LogLevel: "info", LogFormat: "xml"})
	require.Error(t, err)
}

func TestOpen_LocalDrivers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	for _, driver := range []string{store.DriverJSON, store.DriverBolt, store.DriverSQLite} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			cfg := config.Config{
				StoreDriver:    driver,
				StorePath:      filepath.Join(dir, driver, "blogs"),
				MediaDriver:    config.MediaDriverLocal,
				UploadDir:      filepath.Join(dir, driver, "uploads"),
				MaxUploadBytes: 1 << 20,
			}
			rt, err := Open(context.Background(), cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = rt.Close() })

			assert.IsType(t, &storage.LocalMediaStore{}, rt.Media)
			post, err := rt.Service.Create(context.Background(), serviceInput("Wired Up"))
			require.NoError(t, err)

			posts, err := rt.Store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []store.Post{post}, posts)
		})
	}
}

func TestOpenMedia_UnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := OpenMedia(context.Background(), config.Config{MediaDriver: "ftp"})
	require.Error(t, err)
}

func serviceInput(title string) service.CreateInput {
	return service.CreateInput{Title: title, Content: "body"}
}
