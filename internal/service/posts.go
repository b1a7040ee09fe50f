package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"quill/internal/slug"
	"quill/internal/storage"
	"quill/internal/store"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"
)

// List returns every post in store order. A non-blank query narrows the
// result to posts whose title fuzzy-matches it, best match first.
func (s *Service) List(ctx context.Context, query string) ([]store.Post, error) {
	posts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]store.Post, len(posts))
		copy(out, posts)
		return out, nil
	}

	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.Title
	}
	matches := fuzzy.Find(query, titles)
	out := make([]store.Post, 0, len(matches))
	for _, m := range matches {
		out = append(out, posts[m.Index])
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (store.Post, error) {
	posts, err := s.snapshot(ctx)
	if err != nil {
		return store.Post{}, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return store.Post{}, errPostNotFound
	}
	return posts[i], nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (store.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return store.Post{}, errMissingFields
	}
	id := slug.Make(in.Title)
	if id == "" {
		return store.Post{}, errEmptySlug
	}
	var ext string
	if in.Upload != nil {
		var err error
		if ext, err = s.validateUpload(in.Upload); err != nil {
			return store.Post{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Load(ctx)
	if err != nil {
		return store.Post{}, fmt.Errorf("load posts: %w", err)
	}
	if indexOf(posts, id) >= 0 {
		return store.Post{}, errDuplicateID
	}

	post := store.Post{ID: id, Title: in.Title, Content: in.Content}
	var stored string
	if in.Upload != nil {
		if stored, err = s.storeUpload(ctx, id, ext, in.Upload); err != nil {
			return store.Post{}, err
		}
		post.File = fileURL(stored)
	}

	if err := s.store.Save(ctx, append(posts, post)); err != nil {
		if stored != "" {
			s.removeMedia(ctx, stored)
		}
		return store.Post{}, fmt.Errorf("save posts: %w", err)
	}
	s.logger.WithField("id", id).Info("post created")
	return post, nil
}

// Update applies in to the post with the given id. A title change moves the
// post to the new slug and renames its media file to match.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (store.Post, error) {
	var ext string
	if in.Upload != nil {
		var err error
		if ext, err = s.validateUpload(in.Upload); err != nil {
			return store.Post{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Load(ctx)
	if err != nil {
		return store.Post{}, fmt.Errorf("load posts: %w", err)
	}
	idx := indexOf(posts, id)
	if idx < 0 {
		return store.Post{}, errPostNotFound
	}

	post := posts[idx]
	newID := post.ID
	if strings.TrimSpace(in.Title) != "" && in.Title != post.Title {
		newID = slug.Make(in.Title)
		if newID == "" {
			return store.Post{}, errEmptySlug
		}
		if newID != post.ID && indexOf(posts, newID) >= 0 {
			return store.Post{}, errDuplicateID
		}
		post.Title = in.Title
	}
	if strings.TrimSpace(in.Content) != "" {
		post.Content = in.Content
	}

	oldName, hasOld := mediaName(post.File)
	var stored, renamedTo, backup string
	switch {
	case in.Upload != nil:
		// An upload landing on the current name would overwrite the live
		// file; park it until the save succeeds.
		if hasOld && newID+ext == oldName {
			if backup, err = s.parkMedia(ctx, oldName); err != nil {
				return store.Post{}, err
			}
		}
		if stored, err = s.storeUpload(ctx, newID, ext, in.Upload); err != nil {
			s.restoreMedia(ctx, backup, oldName)
			return store.Post{}, err
		}
		post.File = fileURL(stored)
	case hasOld && newID != post.ID:
		target := newID + filepath.Ext(oldName)
		if err := s.media.Rename(ctx, oldName, target); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return store.Post{}, fmt.Errorf("rename media: %w", err)
			}
			s.logger.WithField("file", oldName).Warn("media file missing, keeping reference")
		} else {
			renamedTo = target
			post.File = fileURL(target)
		}
	}
	post.ID = newID

	updated := make([]store.Post, len(posts))
	copy(updated, posts)
	updated[idx] = post
	if err := s.store.Save(ctx, updated); err != nil {
		switch {
		case stored != "":
			s.removeMedia(ctx, stored)
			s.restoreMedia(ctx, backup, oldName)
		case renamedTo != "":
			if rerr := s.media.Rename(ctx, renamedTo, oldName); rerr != nil {
				s.logger.WithError(rerr).WithField("file", renamedTo).Error("restore media name")
			}
		}
		return store.Post{}, fmt.Errorf("save posts: %w", err)
	}

	if stored != "" && hasOld && oldName != stored {
		s.removeMedia(ctx, oldName)
	}
	if backup != "" {
		s.removeMedia(ctx, backup)
	}
	s.logger.WithFields(logrus.Fields{"id": id, "new_id": newID}).Info("post updated")
	return post, nil
}

// Delete removes the post and, once the collection is saved, its media file.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}
	idx := indexOf(posts, id)
	if idx < 0 {
		return errPostNotFound
	}
	file := posts[idx].File

	remaining := make([]store.Post, 0, len(posts)-1)
	remaining = append(remaining, posts[:idx]...)
	remaining = append(remaining, posts[idx+1:]...)
	if err := s.store.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}

	if name, ok := mediaName(file); ok {
		s.removeMedia(ctx, name)
	}
	s.logger.WithField("id", id).Info("post deleted")
	return nil
}

func indexOf(posts []store.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
