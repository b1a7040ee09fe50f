// Package store persists the blog post collection.
//
// Every driver treats the collection as one ordered list that is loaded whole
// and saved whole; callers serialize their read-modify-write cycles.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	DriverJSON     = "json"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Post is a single blog entry. File is nil when no media is attached.
type Post struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	File    *string `json:"file"`
}

// Store loads and saves the full post collection.
type Store interface {
	// Load returns every post in stored order. An empty store yields an
	// empty, non-nil slice.
	Load(ctx context.Context) ([]Post, error)

	// Save replaces the stored collection with posts.
	Save(ctx context.Context, posts []Post) error

	Close() error
}

type Options struct {
	Driver      string
	Path        string // json, bolt and sqlite
	DatabaseURL string // postgres
	Fs          afero.Fs
	Logger      logrus.FieldLogger
}

// Open returns the Store implementation selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverJSON:
		return NewJSONFile(opts.Fs, opts.Path, opts.Logger)
	case DriverBolt:
		return OpenBolt(opts.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
