package service

import (
	"context"
	"fmt"
	"time"
)

type SweepOptions struct {
	// MinAge protects files younger than this; an upload in flight has not
	// been referenced by a post yet.
	MinAge time.Duration
	DryRun bool
}

type SweepResult struct {
	Scanned int
	Orphans []string
	Removed int
}

// SweepOrphans deletes media files that no post references. It holds the
// write lock for the whole pass so a concurrent create cannot race it.
func (s *Service) SweepOrphans(ctx context.Context, opts SweepOptions) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Load(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("load posts: %w", err)
	}
	referenced := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if name, ok := mediaName(p.File); ok {
			referenced[name] = struct{}{}
		}
	}

	files, err := s.media.List(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list media: %w", err)
	}

	res := SweepResult{Scanned: len(files), Orphans: []string{}}
	cutoff := time.Now().Add(-opts.MinAge)
	for _, f := range files {
		if _, ok := referenced[f.Name]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		res.Orphans = append(res.Orphans, f.Name)
		if opts.DryRun {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.media.Delete(ctx, f.Name); err != nil {
			s.logger.WithError(err).WithField("file", f.Name).Warn("delete orphan media")
			continue
		}
		res.Removed++
	}
	if res.Removed > 0 {
		s.logger.WithField("removed", res.Removed).Info("orphan media removed")
	}
	return res, nil
}
